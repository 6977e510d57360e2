package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/api"
	"github.com/fieldserve/inspector-api/config"
	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/ledger"
	"github.com/fieldserve/inspector-api/models"
)

// Equipment exported for testing purposes
type Equipment struct {
	DB     databases.EquipmentDatabase
	Ledger *ledger.Ledger
}

type createEquipmentRequest struct {
	Model        string   `json:"model"`
	SerialNumber string   `json:"serialNumber"`
	Description  string   `json:"description"`
	Condition    string   `json:"condition"`
	CompanyID    string   `json:"companyID"`
	PhotoURLs    []string `json:"photoURLs"`
}

type assignEquipmentRequest struct {
	InspectorID  string    `json:"inspectorID"`
	Condition    string    `json:"condition"`
	AssignedDate time.Time `json:"assignedDate"`
}

type returnEquipmentRequest struct {
	Condition    string    `json:"condition"`
	ReturnedDate time.Time `json:"returnedDate"`
}

// CreateHandler registers a new equipment item, checked in.
func (e Equipment) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if strings.TrimSpace(req.Model) == "" || strings.TrimSpace(req.SerialNumber) == "" {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField, "model and serialNumber are required")))
		return
	}
	condition, ok := models.ParseEquipmentCondition(req.Condition)
	if !ok {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField,
				"condition %q is not recognized", req.Condition)))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	item := models.Equipment{
		ID: primitive.NewObjectID(),
		Details: models.EquipmentDetails{
			Model:        req.Model,
			SerialNumber: req.SerialNumber,
			Description:  req.Description,
			Condition:    condition,
			IsOut:        false,
			CompanyID:    req.CompanyID,
			PhotoURLs:    req.PhotoURLs,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	if _, err := e.DB.InsertOne(r.Context(), item); err != nil {
		config.ErrorStatus("failed to insert equipment", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("equipment created",
		"equipmentID", item.ID.Hex(), "serialNumber", item.Details.SerialNumber)
	writeJSON(w, http.StatusCreated, item)
}

// ByIDHandler returns an equipment item by ID
func (e Equipment) ByIDHandler(w http.ResponseWriter, r *http.Request) {
	equipmentID := mux.Vars(r)["equipment_id"]

	eID, err := primitive.ObjectIDFromHex(equipmentID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := e.DB.FindOne(r.Context(), bson.M{"_id": eID})
	if err == mongo.ErrNoDocuments {
		writeResult(w, models.FailedResult(models.NewNotFoundFault("equipment", equipmentID)))
		return
	}
	if err != nil {
		config.ErrorStatus("failed to get equipment by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AssignHandler checks an equipment item out to an inspector.
func (e Equipment) AssignHandler(w http.ResponseWriter, r *http.Request) {
	equipmentID := mux.Vars(r)["equipment_id"]

	var req assignEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if strings.TrimSpace(req.InspectorID) == "" {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField, "inspectorID is required")))
		return
	}
	condition, ok := models.ParseEquipmentCondition(req.Condition)
	if !ok {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField,
				"condition %q is not recognized", req.Condition)))
		return
	}
	if req.AssignedDate.IsZero() {
		req.AssignedDate = time.Now().UTC()
	}

	assignmentID, err := e.Ledger.Assign(r.Context(), equipmentID, req.InspectorID, condition, req.AssignedDate)
	if err != nil {
		writeResult(w, models.FailedResult(err))
		return
	}

	writeResult(w, models.SucceededResult(models.AssignmentData{
		AssignmentID: assignmentID,
		EquipmentID:  equipmentID,
		InspectorID:  req.InspectorID,
	}))
}

// ReturnHandler checks an equipment item back in, closing its open assignment.
func (e Equipment) ReturnHandler(w http.ResponseWriter, r *http.Request) {
	equipmentID := mux.Vars(r)["equipment_id"]

	var req returnEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	condition, ok := models.ParseEquipmentCondition(req.Condition)
	if !ok {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField,
				"condition %q is not recognized", req.Condition)))
		return
	}
	if req.ReturnedDate.IsZero() {
		req.ReturnedDate = time.Now().UTC()
	}

	if err := e.Ledger.Return(r.Context(), equipmentID, condition, req.ReturnedDate); err != nil {
		writeResult(w, models.FailedResult(err))
		return
	}

	writeResult(w, models.SucceededResult(map[string]string{
		"equipmentId": equipmentID,
		"status":      "returned",
	}))
}

// AssignmentsHandler returns the full assignment history for an equipment item,
// open row included.
func (e Equipment) AssignmentsHandler(w http.ResponseWriter, r *http.Request) {
	equipmentID := mux.Vars(r)["equipment_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	rows, err := e.Ledger.AssignmentHistory(ctx, equipmentID)
	if err != nil {
		writeResult(w, models.FailedResult(err))
		return
	}
	if len(rows) == 0 {
		rows = []models.EquipmentAssignment{}
	}
	writeJSON(w, http.StatusOK, rows)
}
