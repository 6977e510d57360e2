package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/fieldserve/inspector-api/api/handlers"
	"github.com/fieldserve/inspector-api/models"
)

func TestStatusBoard_BroadcastReachesConnectedClient(t *testing.T) {
	board := handlers.NewStatusBoard()
	server := httptest.NewServer(http.HandlerFunc(board.Handle))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Give the server side a moment to register the connection.
	time.Sleep(50 * time.Millisecond)
	board.BroadcastStatusChange("INSP-1", models.StatusMobilized)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Event string `json:"event"`
		Data  struct {
			InspectorID string `json:"inspectorId"`
			Status      string `json:"status"`
		} `json:"data"`
	}
	assert.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "inspector_status", event.Event)
	assert.Equal(t, "INSP-1", event.Data.InspectorID)
	assert.Equal(t, string(models.StatusMobilized), event.Data.Status)
}

func TestStatusBoard_BroadcastWithNoClientsIsNoop(t *testing.T) {
	board := handlers.NewStatusBoard()
	assert.NotPanics(t, func() {
		board.BroadcastStatusChange("INSP-1", models.StatusDemobilized)
	})
}
