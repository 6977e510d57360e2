package lifecycle

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/models"
)

// Machine commits status transitions against the inspectors collection. The
// commit carries the allowed source states in its filter, so the check of the
// current state and the write of the new one happen as one server-side
// operation and concurrent transitions serialize.
type Machine struct {
	inspectorDB databases.InspectorDatabase
	now         func() time.Time
}

// NewMachine wires a state machine against the inspector collection.
func NewMachine(inspectorDB databases.InspectorDatabase) *Machine {
	return &Machine{inspectorDB: inspectorDB, now: time.Now}
}

// Transition moves the inspector to the target status, applying extra field
// updates in the same write. The move must come from one of the allowed
// sources; a mismatch fails with InvalidStateTransition carrying the actual
// current state.
func (m *Machine) Transition(ctx context.Context, inspectorID string, from []models.InspectorStatus, to models.InspectorStatus, set bson.M) (*models.Inspector, error) {
	allowed := make([]models.InspectorStatus, 0, len(from))
	for _, f := range from {
		if CanTransition(f, to) {
			allowed = append(allowed, f)
		}
	}
	if len(allowed) == 0 {
		current := models.InspectorStatus("")
		if len(from) > 0 {
			current = from[0]
		}
		return nil, models.NewTransitionFault(inspectorID, current, to)
	}

	if set == nil {
		set = bson.M{}
	}
	set["inspector.status"] = to
	set["inspector.updatedAt"] = primitive.NewDateTimeFromTime(m.now())

	updated, err := m.inspectorDB.FindOneAndUpdate(ctx,
		bson.M{
			"inspector.inspectorID": inspectorID,
			"inspector.status":      bson.M{"$in": allowed},
		},
		bson.M{"$set": set},
	)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, m.classifyConflict(ctx, inspectorID, to)
		}
		return nil, models.NewTransientFault("failed to commit transition for inspector %s: %v", inspectorID, err)
	}
	return updated, nil
}

func (m *Machine) classifyConflict(ctx context.Context, inspectorID string, to models.InspectorStatus) error {
	current, err := m.inspectorDB.FindOne(ctx, bson.M{"inspector.inspectorID": inspectorID})
	if err == mongo.ErrNoDocuments {
		return models.NewNotFoundFault("inspector", inspectorID)
	}
	if err != nil {
		return models.NewTransientFault("failed to look up inspector %s: %v", inspectorID, err)
	}
	return models.NewTransitionFault(inspectorID, current.Details.Status, to)
}

// Activate moves a pending or demobilized inspector onto the active bench.
func (m *Machine) Activate(ctx context.Context, inspectorID string) (*models.Inspector, error) {
	return m.Transition(ctx, inspectorID,
		[]models.InspectorStatus{models.StatusPending, models.StatusDemobilized},
		models.StatusActive,
		bson.M{"inspector.isActive": true})
}

// Deactivate retires the inspector. Legal from every non-terminal status.
func (m *Machine) Deactivate(ctx context.Context, inspectorID string) (*models.Inspector, error) {
	return m.Transition(ctx, inspectorID,
		AllowedSources(models.StatusInactive),
		models.StatusInactive,
		bson.M{"inspector.isActive": false})
}
