package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/api"
	"github.com/fieldserve/inspector-api/config"
	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/geo"
	"github.com/fieldserve/inspector-api/lifecycle"
	"github.com/fieldserve/inspector-api/models"
)

// Inspector exported for testing purposes
type Inspector struct {
	DB          databases.InspectorDatabase
	Searcher    *geo.Searcher
	Machine     *lifecycle.Machine
	Assignments lifecycle.AssignmentLister
}

type createInspectorRequest struct {
	FirstName              string   `json:"firstName"`
	LastName               string   `json:"lastName"`
	Email                  string   `json:"email"`
	State                  string   `json:"state"`
	Specialties            []string `json:"specialties"`
	Classification         string   `json:"classification"`
	HireType               string   `json:"hireType"`
	CertificationRequired  bool     `json:"certificationRequired"`
	RequiredCertifications []string `json:"requiredCertifications"`
	Certifications         []string `json:"certifications"`
	Longitude              float64  `json:"longitude"`
	Latitude               float64  `json:"latitude"`
}

// SearchHandler runs a radius search from the query string.
//
// GET /inspectors/search?zip=77002&radiusMiles=50&status=active
//
//	&specialties=welding,coating&certifications=AWS-CWI
//	&hasValidDrugTest=true&page=0&pageSize=25
func (i Inspector) SearchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	radius, err := strconv.ParseFloat(q.Get("radiusMiles"), 64)
	if err != nil {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeInvalidSearchParameters,
				"radiusMiles %q is not a number", q.Get("radiusMiles"))))
		return
	}

	params := geo.SearchParams{
		ZipCode:     q.Get("zip"),
		RadiusMiles: radius,
		Filters: geo.SearchFilters{
			Status:           q.Get("status"),
			Specialties:      splitCSV(q.Get("specialties")),
			Certifications:   splitCSV(q.Get("certifications")),
			HasValidDrugTest: q.Get("hasValidDrugTest") == "true",
		},
		PageNumber: getPage(r),
	}
	if ps := q.Get("pageSize"); ps != "" {
		size, err := strconv.Atoi(ps)
		if err != nil {
			writeResult(w, models.FailedResult(
				models.NewValidationFault(models.CodeInvalidSearchParameters,
					"pageSize %q is not a number", ps)))
			return
		}
		params.PageSize = size
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	page, err := i.Searcher.Search(ctx, params)
	if err != nil {
		writeResult(w, models.FailedResult(err))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateHandler registers a new inspector in the Pending state.
func (i Inspector) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createInspectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField, "firstName and lastName are required")))
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField, "email is required")))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	inspector := models.Inspector{
		ID: primitive.NewObjectID(),
		Details: models.InspectorDetails{
			InspectorID:            "INSP-" + uuid.New().String(),
			FirstName:              req.FirstName,
			LastName:               req.LastName,
			Email:                  strings.ToLower(strings.TrimSpace(req.Email)),
			Status:                 models.StatusPending,
			State:                  req.State,
			Specialties:            req.Specialties,
			Classification:         req.Classification,
			HireType:               req.HireType,
			CertificationRequired:  req.CertificationRequired,
			RequiredCertifications: req.RequiredCertifications,
			Certifications:         req.Certifications,
			Location:               models.NewGeoPoint(req.Longitude, req.Latitude),
			CreatedAt:              now,
			UpdatedAt:              now,
		},
	}

	if _, err := i.DB.InsertOne(r.Context(), inspector); err != nil {
		config.ErrorStatus("failed to insert inspector", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("inspector created",
		"inspectorID", inspector.Details.InspectorID, "email", inspector.Details.Email)
	writeJSON(w, http.StatusCreated, inspector)
}

// ByIDHandler returns an inspector by its business identifier.
func (i Inspector) ByIDHandler(w http.ResponseWriter, r *http.Request) {
	inspectorID := mux.Vars(r)["inspector_id"]

	zap.S().Debugf("inspector_id: %v", inspectorID)

	dbResp, err := i.DB.FindOne(r.Context(), bson.M{"inspector.inspectorID": inspectorID})
	if err == mongo.ErrNoDocuments {
		writeResult(w, models.FailedResult(models.NewNotFoundFault("inspector", inspectorID)))
		return
	}
	if err != nil {
		config.ErrorStatus("failed to get inspector by ID", http.StatusInternalServerError, w, err)
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

// ActivateHandler moves an inspector into the Active state.
func (i Inspector) ActivateHandler(w http.ResponseWriter, r *http.Request) {
	inspectorID := mux.Vars(r)["inspector_id"]

	inspector, err := i.Machine.Activate(r.Context(), inspectorID)
	if err != nil {
		writeResult(w, models.FailedResult(err))
		return
	}
	writeResult(w, models.SucceededResult(inspector))
}

// DeactivateHandler moves an inspector into the terminal Inactive state. An
// inspector still holding equipment cannot be retired; the open assignments
// must be returned first.
func (i Inspector) DeactivateHandler(w http.ResponseWriter, r *http.Request) {
	inspectorID := mux.Vars(r)["inspector_id"]

	if i.Assignments != nil {
		open, err := i.Assignments.OpenAssignments(r.Context(), inspectorID)
		if err != nil {
			writeResult(w, models.FailedResult(err))
			return
		}
		if len(open) > 0 {
			writeResult(w, models.FailedResult(
				models.NewConflictFault(models.CodeOutstandingEquipment,
					"inspector %s still holds %d equipment item(s)", inspectorID, len(open)).WithEntity(inspectorID)))
			return
		}
	}

	inspector, err := i.Machine.Deactivate(r.Context(), inspectorID)
	if err != nil {
		writeResult(w, models.FailedResult(err))
		return
	}
	writeResult(w, models.SucceededResult(inspector))
}

// splitCSV splits a comma-separated query value, dropping empty segments.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
