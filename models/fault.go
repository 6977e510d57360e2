package models

import (
	"errors"
	"fmt"
)

// ErrorKind buckets every failure the engine can surface. Validation, conflict,
// compliance and not-found errors are returned synchronously and never retried;
// transient errors are eligible for bounded retry by the orchestrator.
type ErrorKind string

// Error kinds.
const (
	KindValidation ErrorKind = "ValidationError"
	KindConflict   ErrorKind = "ConflictError"
	KindCompliance ErrorKind = "ComplianceError"
	KindTransient  ErrorKind = "TransientError"
	KindNotFound   ErrorKind = "NotFoundError"
)

// Stable error codes carried alongside the kind for client-side matching.
const (
	CodeInvalidSearchParameters  = "InvalidSearchParameters"
	CodeEquipmentAlreadyAssigned = "EquipmentAlreadyAssigned"
	CodeNoOpenAssignment         = "NoOpenAssignment"
	CodeInvalidAssignmentDate    = "InvalidAssignmentDate"
	CodeInvalidReturnDate        = "InvalidReturnDate"
	CodeInvalidStateTransition   = "InvalidStateTransition"
	CodeOutstandingEquipment     = "OutstandingEquipment"
	CodeInvalidMobilizationDate  = "InvalidMobilizationDate"
	CodeInvalidDemobilization    = "InvalidDemobilizationDate"
	CodeNotCompliant             = "NotCompliant"
	CodeMissingRequiredField     = "MissingRequiredField"
	CodeNotFound                 = "NotFound"
	CodePersistenceUnavailable   = "PersistenceUnavailable"
)

// Fault is the structured error the core returns. It carries enough context
// (entity id, attempted transition, expected vs actual state) for precise client
// messaging and test assertions.
type Fault struct {
	Kind     ErrorKind `json:"kind"`
	Code     string    `json:"code,omitempty"`
	Message  string    `json:"message"`
	EntityID string    `json:"entityId,omitempty"`
	Expected string    `json:"expected,omitempty"`
	Actual   string    `json:"actual,omitempty"`
}

func (f *Fault) Error() string {
	if f.EntityID != "" {
		return fmt.Sprintf("%s/%s: %s (entity %s)", f.Kind, f.Code, f.Message, f.EntityID)
	}
	return fmt.Sprintf("%s/%s: %s", f.Kind, f.Code, f.Message)
}

// WithEntity returns a copy of the fault tagged with the entity id.
func (f *Fault) WithEntity(id string) *Fault {
	c := *f
	c.EntityID = id
	return &c
}

// NewValidationFault builds a ValidationError fault.
func NewValidationFault(code, format string, args ...interface{}) *Fault {
	return &Fault{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewConflictFault builds a ConflictError fault.
func NewConflictFault(code, format string, args ...interface{}) *Fault {
	return &Fault{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewComplianceFault builds a ComplianceError fault.
func NewComplianceFault(format string, args ...interface{}) *Fault {
	return &Fault{Kind: KindCompliance, Code: CodeNotCompliant, Message: fmt.Sprintf(format, args...)}
}

// NewTransientFault builds a TransientError fault wrapping a lower-level cause.
func NewTransientFault(format string, args ...interface{}) *Fault {
	return &Fault{Kind: KindTransient, Code: CodePersistenceUnavailable, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundFault builds a NotFoundError fault for the given entity.
func NewNotFoundFault(entity, id string) *Fault {
	return &Fault{Kind: KindNotFound, Code: CodeNotFound, Message: entity + " not found", EntityID: id}
}

// NewTransitionFault builds the ConflictError for a rejected state transition,
// recording the requested target and the actual current state.
func NewTransitionFault(inspectorID string, current, requested InspectorStatus) *Fault {
	return &Fault{
		Kind:     KindConflict,
		Code:     CodeInvalidStateTransition,
		Message:  fmt.Sprintf("cannot transition inspector from %s to %s", current, requested),
		EntityID: inspectorID,
		Expected: string(requested),
		Actual:   string(current),
	}
}

// AsFault unwraps err into a *Fault when possible.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsKind reports whether err is a fault of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	f, ok := AsFault(err)
	return ok && f.Kind == kind
}

// IsRetryable reports whether the orchestrator may retry the operation that
// produced err. Only transient faults qualify.
func IsRetryable(err error) bool {
	return IsKind(err, KindTransient)
}
