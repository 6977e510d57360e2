package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldserve/inspector-api/api/handlers"
	"github.com/fieldserve/inspector-api/compliance"
	"github.com/fieldserve/inspector-api/databases/mocks"
	"github.com/fieldserve/inspector-api/models"
)

func TestDrugTest_RecordHandlerRejectsUnknownType(t *testing.T) {
	body := bytes.NewBufferString(`{
		"testDate": "2024-05-01T00:00:00Z",
		"testType": "surprise",
		"frequency": "quarterly",
		"result": "negative"
	}`)
	req, err := http.NewRequest("POST", "/api/v1/inspector/INSP-1/drug-tests", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"inspector_id": "INSP-1"})

	d := handlers.DrugTest{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.RecordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var result models.OperationResult
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, models.CodeMissingRequiredField, result.Error.Code)
}

func TestDrugTest_RecordHandlerUnknownInspector(t *testing.T) {
	body := bytes.NewBufferString(`{
		"testDate": "2024-05-01T00:00:00Z",
		"testType": "random",
		"frequency": "quarterly",
		"result": "negative"
	}`)
	req, err := http.NewRequest("POST", "/api/v1/inspector/INSP-404/drug-tests", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"inspector_id": "INSP-404"})

	inspectorDB := mocks.NewInspectorDatabase(t)
	inspectorDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	d := handlers.DrugTest{InspectorDB: inspectorDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.RecordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDrugTest_RecordHandlerAppendsAndDenormalizes(t *testing.T) {
	body := bytes.NewBufferString(`{
		"testDate": "2024-05-01T00:00:00Z",
		"testType": "random",
		"frequency": "quarterly",
		"result": "negative"
	}`)
	req, err := http.NewRequest("POST", "/api/v1/inspector/INSP-1/drug-tests", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"inspector_id": "INSP-1"})

	inspectorDB := mocks.NewInspectorDatabase(t)
	inspectorDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Inspector{
		Details: models.InspectorDetails{InspectorID: "INSP-1", Status: models.StatusActive},
	}, nil)
	inspectorDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	drugTestDB := mocks.NewDrugTestDatabase(t)
	drugTestDB.On("InsertOne", mock.Anything, mock.MatchedBy(func(doc interface{}) bool {
		record, ok := doc.(models.DrugTestRecord)
		return ok &&
			record.Details.InspectorID == "INSP-1" &&
			record.Details.TestType == models.TestRandom &&
			record.Details.Result == models.ResultNegative
	})).Return(&mocks.InsertOneResultHelper{}, nil)

	d := handlers.DrugTest{DB: drugTestDB, InspectorDB: inspectorDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.RecordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var record models.DrugTestRecord
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &record))
	assert.Equal(t, models.FrequencyQuarterly, record.Details.Frequency)
}

func TestDrugTest_RecordHandlerPendingSkipsDenormalization(t *testing.T) {
	body := bytes.NewBufferString(`{
		"testDate": "2024-05-01T00:00:00Z",
		"testType": "random",
		"frequency": "quarterly",
		"result": "pending"
	}`)
	req, err := http.NewRequest("POST", "/api/v1/inspector/INSP-1/drug-tests", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"inspector_id": "INSP-1"})

	inspectorDB := mocks.NewInspectorDatabase(t)
	inspectorDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Inspector{
		Details: models.InspectorDetails{InspectorID: "INSP-1"},
	}, nil)

	drugTestDB := mocks.NewDrugTestDatabase(t)
	drugTestDB.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)

	d := handlers.DrugTest{DB: drugTestDB, InspectorDB: inspectorDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.RecordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	inspectorDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestDrugTest_HistoryHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/inspector/INSP-1/drug-tests?limit=5&page=0", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"inspector_id": "INSP-1"})

	drugTestDB := mocks.NewDrugTestDatabase(t)
	drugTestDB.On("History", mock.Anything, "INSP-1", 5, 0).Return([]models.DrugTestRecord{
		{ID: primitive.NewObjectID(), Details: models.DrugTestDetails{InspectorID: "INSP-1"}},
	}, nil)

	d := handlers.DrugTest{DB: drugTestDB}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.HistoryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var records []models.DrugTestRecord
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	assert.Len(t, records, 1)
}

func TestDrugTest_ComplianceHandlerCurrentTest(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/inspector/INSP-1/compliance", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"inspector_id": "INSP-1"})

	recent := time.Now().UTC().Add(-10 * 24 * time.Hour)
	drugTestDB := mocks.NewDrugTestDatabase(t)
	drugTestDB.On("Find", mock.Anything, mock.Anything).Return([]models.DrugTestRecord{
		{
			ID: primitive.NewObjectID(),
			Details: models.DrugTestDetails{
				InspectorID: "INSP-1",
				TestDate:    primitive.NewDateTimeFromTime(recent),
				TestType:    models.TestRandom,
				Frequency:   models.FrequencyQuarterly,
				Result:      models.ResultNegative,
			},
		},
	}, nil)

	d := handlers.DrugTest{Tracker: compliance.NewTracker(drugTestDB)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.ComplianceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		InspectorID string     `json:"inspectorId"`
		Compliant   bool       `json:"compliant"`
		NextTestDue *time.Time `json:"nextTestDue"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "INSP-1", resp.InspectorID)
	assert.True(t, resp.Compliant)
	if assert.NotNil(t, resp.NextTestDue) {
		expected := recent.Add(91 * 24 * time.Hour)
		assert.WithinDuration(t, expected, *resp.NextTestDue, time.Second)
	}
}

func TestDrugTest_ComplianceHandlerNoHistory(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/inspector/INSP-9/compliance", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"inspector_id": "INSP-9"})

	drugTestDB := mocks.NewDrugTestDatabase(t)
	drugTestDB.On("Find", mock.Anything, mock.Anything).Return([]models.DrugTestRecord{}, nil)

	d := handlers.DrugTest{Tracker: compliance.NewTracker(drugTestDB)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.ComplianceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), fmt.Sprintf("%q", "INSP-9"))
	assert.Contains(t, rr.Body.String(), `"compliant":false`)
}
