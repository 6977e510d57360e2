package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldserve/inspector-api/api/handlers"
	"github.com/fieldserve/inspector-api/databases/mocks"
	"github.com/fieldserve/inspector-api/models"
)

func TestAdmin_AdminLoginHandlerUnknownEmail(t *testing.T) {
	adminDB := mocks.NewAdminDatabase(t)
	adminDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mongo: no documents in result"))

	h := handlers.Admin{ADB: adminDB, Secret: "test-secret"}

	body := bytes.NewBufferString(`{"email": "nobody@example.com", "password": "hunter2"}`)
	req, err := http.NewRequest("POST", "/api/v1/admin/login", body)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdmin_AdminLoginHandlerWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	adminDB := mocks.NewAdminDatabase(t)
	adminDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.AdminUser{
		ID:           primitive.NewObjectID(),
		Email:        "ops@example.com",
		PasswordHash: string(hash),
		Active:       true,
	}, nil)

	h := handlers.Admin{ADB: adminDB, Secret: "test-secret"}

	body := bytes.NewBufferString(`{"email": "ops@example.com", "password": "wrong-password"}`)
	req, err := http.NewRequest("POST", "/api/v1/admin/login", body)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdmin_AdminLoginHandlerIssuesToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	adminDB := mocks.NewAdminDatabase(t)
	adminDB.On("FindOne", mock.Anything, bson.M{"email": "ops@example.com", "active": true}).
		Return(&models.AdminUser{
			ID:           primitive.NewObjectID(),
			Email:        "ops@example.com",
			PasswordHash: string(hash),
			Active:       true,
			Roles:        []string{"dispatcher"},
		}, nil)

	h := handlers.Admin{ADB: adminDB, Secret: "test-secret"}

	body := bytes.NewBufferString(`{"email": "Ops@Example.com", "password": "correct-password"}`)
	req, err := http.NewRequest("POST", "/api/v1/admin/login", body)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token string `json:"token"`
		Admin struct {
			Email string   `json:"email"`
			Roles []string `json:"roles"`
		} `json:"admin"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ops@example.com", resp.Admin.Email)
	assert.Equal(t, []string{"dispatcher"}, resp.Admin.Roles)
}

func TestAdmin_AdminLoginHandlerMissingSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	adminDB := mocks.NewAdminDatabase(t)
	adminDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.AdminUser{
		Email:        "ops@example.com",
		PasswordHash: string(hash),
		Active:       true,
	}, nil)

	h := handlers.Admin{ADB: adminDB}

	body := bytes.NewBufferString(`{"email": "ops@example.com", "password": "correct-password"}`)
	req, err := http.NewRequest("POST", "/api/v1/admin/login", body)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
