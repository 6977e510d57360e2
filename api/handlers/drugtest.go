package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/compliance"
	"github.com/fieldserve/inspector-api/config"
	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/models"
)

// DrugTest exported for testing purposes
type DrugTest struct {
	DB          databases.DrugTestDatabase
	InspectorDB databases.InspectorDatabase
	Tracker     *compliance.Tracker
}

type recordDrugTestRequest struct {
	TestDate  time.Time `json:"testDate"`
	TestType  string    `json:"testType"`
	Frequency string    `json:"frequency"`
	Result    string    `json:"result"`
}

type complianceResponse struct {
	InspectorID string     `json:"inspectorId"`
	Compliant   bool       `json:"compliant"`
	NextTestDue *time.Time `json:"nextTestDue"`
}

// HistoryHandler returns an inspector's drug test records, newest first.
func (d DrugTest) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	inspectorID := mux.Vars(r)["inspector_id"]

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	page := getPage(r)

	records, err := d.DB.History(r.Context(), inspectorID, limit, page)
	if err != nil {
		config.ErrorStatus("failed to get drug test history", http.StatusInternalServerError, w, err)
		return
	}
	if len(records) == 0 {
		records = []models.DrugTestRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// RecordHandler appends a drug test record to an inspector's history. Records
// are append-only; corrections are new records, not edits.
func (d DrugTest) RecordHandler(w http.ResponseWriter, r *http.Request) {
	inspectorID := mux.Vars(r)["inspector_id"]

	var req recordDrugTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.TestDate.IsZero() {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField, "testDate is required")))
		return
	}
	testType, ok := models.ParseDrugTestType(req.TestType)
	if !ok {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField,
				"testType %q is not recognized", req.TestType)))
		return
	}
	frequency, ok := models.ParseDrugTestFrequency(req.Frequency)
	if !ok {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField,
				"frequency %q is not recognized", req.Frequency)))
		return
	}
	result, ok := models.ParseDrugTestResult(req.Result)
	if !ok {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField,
				"result %q is not recognized", req.Result)))
		return
	}

	_, err := d.InspectorDB.FindOne(r.Context(), bson.M{"inspector.inspectorID": inspectorID})
	if err == mongo.ErrNoDocuments {
		writeResult(w, models.FailedResult(models.NewNotFoundFault("inspector", inspectorID)))
		return
	}
	if err != nil {
		config.ErrorStatus("failed to get inspector by ID", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	record := models.DrugTestRecord{
		ID: primitive.NewObjectID(),
		Details: models.DrugTestDetails{
			InspectorID: inspectorID,
			TestDate:    primitive.NewDateTimeFromTime(req.TestDate),
			TestType:    testType,
			Frequency:   frequency,
			Result:      result,
			CreatedAt:   now,
		},
	}

	if _, err := d.DB.InsertOne(r.Context(), record); err != nil {
		config.ErrorStatus("failed to insert drug test record", http.StatusInternalServerError, w, err)
		return
	}

	// The denormalized fields on the inspector document are a convenience for
	// list views; compliance decisions always read the history.
	if result != models.ResultPending {
		_, err = d.InspectorDB.UpdateOne(r.Context(),
			bson.M{"inspector.inspectorID": inspectorID},
			bson.M{"$set": bson.M{
				"inspector.lastDrugTestDate":   record.Details.TestDate,
				"inspector.lastDrugTestResult": result,
				"inspector.updatedAt":          now,
			}},
		)
		if err != nil {
			zap.S().Errorw("failed to update inspector last drug test fields",
				"inspectorID", inspectorID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, record)
}

// ComplianceHandler reports whether the inspector holds a current drug test and
// when the next one is due.
func (d DrugTest) ComplianceHandler(w http.ResponseWriter, r *http.Request) {
	inspectorID := mux.Vars(r)["inspector_id"]

	compliant, err := d.Tracker.IsCompliant(r.Context(), inspectorID, time.Now().UTC())
	if err != nil {
		writeResult(w, models.FailedResult(err))
		return
	}
	due, err := d.Tracker.RequiredTestDate(r.Context(), inspectorID)
	if err != nil {
		writeResult(w, models.FailedResult(err))
		return
	}

	writeJSON(w, http.StatusOK, complianceResponse{
		InspectorID: inspectorID,
		Compliant:   compliant,
		NextTestDue: due,
	})
}
