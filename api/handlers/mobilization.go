package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fieldserve/inspector-api/config"
	"github.com/fieldserve/inspector-api/lifecycle"
	"github.com/fieldserve/inspector-api/models"
)

// Mobilization exported for testing purposes
type Mobilization struct {
	Orchestrator *lifecycle.Orchestrator
}

// MobilizeHandler mobilizes an inspector onto a project. The response envelope
// carries warnings when the state change committed but the notification did not
// go out.
func (m Mobilization) MobilizeHandler(w http.ResponseWriter, r *http.Request) {
	inspectorID := mux.Vars(r)["inspector_id"]

	var details lifecycle.MobilizationDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	result := m.Orchestrator.Mobilize(r.Context(), inspectorID, details)
	writeResult(w, result)
}

// DemobilizeHandler ends an inspector's mobilization. Open equipment
// assignments are reported in the payload, never blocked on.
func (m Mobilization) DemobilizeHandler(w http.ResponseWriter, r *http.Request) {
	inspectorID := mux.Vars(r)["inspector_id"]

	var details lifecycle.DemobilizationDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if details.Reason == "" {
		writeResult(w, models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField, "reason is required")))
		return
	}

	result := m.Orchestrator.Demobilize(r.Context(), inspectorID, details)
	writeResult(w, result)
}
