package lifecycle

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/models"
)

// ComplianceChecker is the slice of the compliance tracker the orchestrator
// consults before a mobilization.
type ComplianceChecker interface {
	IsCompliant(ctx context.Context, inspectorID string, asOf time.Time) (bool, error)
}

// AssignmentLister reports an inspector's open equipment assignments so a
// demobilization can surface them as pending returns.
type AssignmentLister interface {
	OpenAssignments(ctx context.Context, inspectorID string) ([]models.EquipmentAssignment, error)
}

// EventSink receives lifecycle events after a committed transition. The status
// board hub implements it; a nil sink disables broadcasting.
type EventSink interface {
	BroadcastStatusChange(inspectorID string, status models.InspectorStatus)
}

// MobilizationDetails is the caller-supplied input to Mobilize.
type MobilizationDetails struct {
	ProjectName  string    `json:"projectName"`
	CustomerName string    `json:"customerName"`
	MobDate      time.Time `json:"mobDate"`
}

// DemobilizationDetails is the caller-supplied input to Demobilize.
type DemobilizationDetails struct {
	Reason string    `json:"reason"`
	Note   string    `json:"note"`
	Date   time.Time `json:"date"`
}

// Orchestrator sequences compliance check, state transition and notification
// into one externally visible operation. It is stateless between calls; every
// invocation derives state from the store.
type Orchestrator struct {
	inspectorDB databases.InspectorDatabase
	machine     *Machine
	compliance  ComplianceChecker
	assignments AssignmentLister
	notifier    Notifier
	persist     RetryPolicy
	notify      RetryPolicy
	grace       time.Duration
	sink        EventSink
	now         func() time.Time
}

// NewOrchestrator wires the lifecycle orchestrator. grace is the window a
// mobilization date may lie in the past.
func NewOrchestrator(
	inspectorDB databases.InspectorDatabase,
	machine *Machine,
	compliance ComplianceChecker,
	assignments AssignmentLister,
	notifier Notifier,
	notify RetryPolicy,
	grace time.Duration,
) *Orchestrator {
	return &Orchestrator{
		inspectorDB: inspectorDB,
		machine:     machine,
		compliance:  compliance,
		assignments: assignments,
		notifier:    notifier,
		persist:     DefaultRetryPolicy(),
		notify:      notify,
		grace:       grace,
		sink:        nil,
		now:         time.Now,
	}
}

// SetEventSink attaches a status event broadcaster.
func (o *Orchestrator) SetEventSink(sink EventSink) { o.sink = sink }

// Mobilize validates preconditions, commits Active|Demobilized -> Mobilized,
// then notifies the inspector. A failed notification is a warning on a
// successful result, never a rollback.
func (o *Orchestrator) Mobilize(ctx context.Context, inspectorID string, details MobilizationDetails) models.OperationResult {
	if err := o.validateMobilization(details); err != nil {
		return models.FailedResult(err)
	}

	if _, err := o.loadInspector(ctx, inspectorID); err != nil {
		return models.FailedResult(err)
	}

	ok, err := o.compliance.IsCompliant(ctx, inspectorID, details.MobDate)
	if err != nil {
		return models.FailedResult(err)
	}
	if !ok {
		return models.FailedResult(
			models.NewComplianceFault("inspector %s does not meet the drug test policy as of %s",
				inspectorID, details.MobDate.Format("2006-01-02")).WithEntity(inspectorID))
	}

	set := bson.M{
		"inspector.mobilizationDate":   primitive.NewDateTimeFromTime(details.MobDate),
		"inspector.demobilizationDate": nil,
		"inspector.currentProject":     details.ProjectName,
		"inspector.currentCustomer":    details.CustomerName,
	}
	var updated *models.Inspector
	err = o.persist.Do(ctx, "mobilize", func() error {
		var terr error
		updated, terr = o.machine.Transition(ctx, inspectorID,
			[]models.InspectorStatus{models.StatusActive, models.StatusDemobilized},
			models.StatusMobilized, set)
		return terr
	})
	if err != nil {
		return models.FailedResult(err)
	}
	o.broadcast(inspectorID, models.StatusMobilized)

	notified := o.tryNotify(ctx, "mobilization", func() error {
		return o.notifier.SendMobilizationNotification(ctx,
			updated.Details.Email, updated.Details.FullName(),
			details.ProjectName, details.CustomerName, details.MobDate)
	})

	data := models.MobilizationData{
		InspectorID: inspectorID,
		Status:      string(models.StatusMobilized),
		Notified:    notified,
	}
	if !notified {
		return models.SucceededResult(data, models.WarnNotificationFailed)
	}
	return models.SucceededResult(data)
}

// Demobilize commits Mobilized -> Demobilized and reports any open equipment
// assignments as pending returns. Equipment is never auto-returned here.
func (o *Orchestrator) Demobilize(ctx context.Context, inspectorID string, details DemobilizationDetails) models.OperationResult {
	reason, ok := models.ParseDemobilizationReason(details.Reason)
	if !ok {
		return models.FailedResult(
			models.NewValidationFault(models.CodeMissingRequiredField,
				"demobilization reason %q is not recognized", details.Reason).WithEntity(inspectorID))
	}

	inspector, err := o.loadInspector(ctx, inspectorID)
	if err != nil {
		return models.FailedResult(err)
	}
	if inspector.Details.MobilizationDate != nil && details.Date.Before(inspector.Details.MobilizationDate.Time()) {
		return models.FailedResult(
			models.NewValidationFault(models.CodeInvalidDemobilization,
				"demobilization date %s precedes mobilization date %s",
				details.Date.Format("2006-01-02"),
				inspector.Details.MobilizationDate.Time().Format("2006-01-02")).WithEntity(inspectorID))
	}

	set := bson.M{
		"inspector.demobilizationDate":   primitive.NewDateTimeFromTime(details.Date),
		"inspector.demobilizationReason": reason,
		"inspector.demobilizationNote":   strings.TrimSpace(details.Note),
	}
	var updated *models.Inspector
	err = o.persist.Do(ctx, "demobilize", func() error {
		var terr error
		updated, terr = o.machine.Transition(ctx, inspectorID,
			[]models.InspectorStatus{models.StatusMobilized},
			models.StatusDemobilized, set)
		return terr
	})
	if err != nil {
		return models.FailedResult(err)
	}
	o.broadcast(inspectorID, models.StatusDemobilized)

	pending, err := o.assignments.OpenAssignments(ctx, inspectorID)
	if err != nil {
		// The transition is committed; a listing failure only degrades the payload.
		zap.S().Errorw("failed to list open assignments after demobilization",
			"inspectorID", inspectorID, "error", err)
	}
	pendingIDs := make([]string, 0, len(pending))
	for _, a := range pending {
		pendingIDs = append(pendingIDs, a.Details.EquipmentID)
	}

	notified := o.tryNotify(ctx, "demobilization", func() error {
		return o.notifier.SendDemobilizationNotification(ctx,
			updated.Details.Email, updated.Details.FullName(), reason, details.Date)
	})

	data := models.DemobilizationData{
		InspectorID:    inspectorID,
		Status:         string(models.StatusDemobilized),
		PendingReturns: pendingIDs,
	}
	if !notified {
		return models.SucceededResult(data, models.WarnNotificationFailed)
	}
	return models.SucceededResult(data)
}

func (o *Orchestrator) validateMobilization(details MobilizationDetails) error {
	if strings.TrimSpace(details.ProjectName) == "" {
		return models.NewValidationFault(models.CodeMissingRequiredField, "projectName is required")
	}
	if strings.TrimSpace(details.CustomerName) == "" {
		return models.NewValidationFault(models.CodeMissingRequiredField, "customerName is required")
	}
	if details.MobDate.IsZero() {
		return models.NewValidationFault(models.CodeMissingRequiredField, "mobDate is required")
	}
	if details.MobDate.Before(o.now().Add(-o.grace)) {
		return models.NewValidationFault(models.CodeInvalidMobilizationDate,
			"mobilization date %s is more than %s in the past",
			details.MobDate.Format("2006-01-02"), o.grace)
	}
	return nil
}

func (o *Orchestrator) loadInspector(ctx context.Context, inspectorID string) (*models.Inspector, error) {
	inspector, err := o.inspectorDB.FindOne(ctx, bson.M{"inspector.inspectorID": inspectorID})
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundFault("inspector", inspectorID)
	}
	if err != nil {
		return nil, models.NewTransientFault("failed to load inspector %s: %v", inspectorID, err)
	}
	return inspector, nil
}

// tryNotify runs the notification under the bounded retry policy and reports
// whether it ultimately went out. Failures are logged, never propagated.
func (o *Orchestrator) tryNotify(ctx context.Context, kind string, fn func() error) bool {
	if err := o.notify.Do(ctx, kind+" notification", fn); err != nil {
		zap.S().Warnw("notification failed after retries", "kind", kind, "error", err)
		return false
	}
	return true
}

func (o *Orchestrator) broadcast(inspectorID string, status models.InspectorStatus) {
	if o.sink != nil {
		o.sink.BroadcastStatusChange(inspectorID, status)
	}
}
