package models

// OperationResult is the envelope every externally visible operation returns.
// Warnings carry non-fatal degradations (a failed notification) that must not
// flip Success.
type OperationResult struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Error    *Fault      `json:"error,omitempty"`
}

// WarnNotificationFailed is the warning attached when the notification
// collaborator exhausted its retries after a committed state change.
const WarnNotificationFailed = "notification_failed"

// SucceededResult wraps data in a successful envelope.
func SucceededResult(data interface{}, warnings ...string) OperationResult {
	return OperationResult{Success: true, Data: data, Warnings: warnings}
}

// FailedResult wraps err in a failed envelope. Non-fault errors are surfaced as
// transient so callers still get a structured kind.
func FailedResult(err error) OperationResult {
	if f, ok := AsFault(err); ok {
		return OperationResult{Success: false, Error: f}
	}
	return OperationResult{Success: false, Error: NewTransientFault("%v", err)}
}

// MobilizationData is the payload for a successful mobilization.
type MobilizationData struct {
	InspectorID string `json:"inspectorId"`
	Status      string `json:"status"`
	Notified    bool   `json:"notified"`
}

// DemobilizationData is the payload for a successful demobilization.
// PendingReturns lists equipment ids still assigned to the inspector; returning
// them is a separate operator action, never a blocker.
type DemobilizationData struct {
	InspectorID    string   `json:"inspectorId"`
	Status         string   `json:"status"`
	PendingReturns []string `json:"pendingReturns"`
}

// AssignmentData is the payload for a successful equipment assignment.
type AssignmentData struct {
	AssignmentID string `json:"assignmentId"`
	EquipmentID  string `json:"equipmentId"`
	InspectorID  string `json:"inspectorId"`
}

// HealthCheckResponse is returned by the health endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
