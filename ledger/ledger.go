package ledger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/models"
)

// Ledger keeps the equipment assignment book: at most one open assignment per
// equipment item at any time. The guarantee rests on the compare-and-set flip
// of equipment.isOut, which only one concurrent caller can win.
type Ledger struct {
	equipmentDB  databases.EquipmentDatabase
	assignmentDB databases.AssignmentDatabase
	now          func() time.Time
}

// NewLedger wires a ledger against the equipment and assignment collections.
func NewLedger(equipmentDB databases.EquipmentDatabase, assignmentDB databases.AssignmentDatabase) *Ledger {
	return &Ledger{
		equipmentDB:  equipmentDB,
		assignmentDB: assignmentDB,
		now:          time.Now,
	}
}

// Assign opens an assignment of the equipment item to the inspector. The isOut
// flip is the serialization point: when two callers race, exactly one wins the
// compare-and-set and the other observes EquipmentAlreadyAssigned.
func (l *Ledger) Assign(ctx context.Context, equipmentID, inspectorID string, condition models.EquipmentCondition, date time.Time) (string, error) {
	if date.After(l.now()) {
		return "", models.NewValidationFault(models.CodeInvalidAssignmentDate,
			"assignment date %s is in the future", date.Format(time.RFC3339)).WithEntity(equipmentID)
	}

	oid, err := primitive.ObjectIDFromHex(equipmentID)
	if err != nil {
		return "", models.NewValidationFault(models.CodeMissingRequiredField, "equipment id %q is malformed", equipmentID)
	}

	now := primitive.NewDateTimeFromTime(l.now())
	_, err = l.equipmentDB.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "equipment.isOut": false},
		bson.M{"$set": bson.M{"equipment.isOut": true, "equipment.updatedAt": now}},
	)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", l.classifyAssignConflict(ctx, oid, equipmentID)
		}
		return "", models.NewTransientFault("failed to reserve equipment %s: %v", equipmentID, err)
	}

	assignment := models.EquipmentAssignment{
		ID: primitive.NewObjectID(),
		Details: models.AssignmentDetails{
			EquipmentID:       equipmentID,
			InspectorID:       inspectorID,
			AssignedCondition: condition,
			AssignedDate:      primitive.NewDateTimeFromTime(date),
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
	if _, err := l.assignmentDB.InsertOne(ctx, assignment); err != nil {
		l.releaseEquipment(ctx, oid)
		return "", models.NewTransientFault("failed to record assignment for equipment %s: %v", equipmentID, err)
	}
	return assignment.ID.Hex(), nil
}

// classifyAssignConflict distinguishes a missing equipment row from one that is
// already out.
func (l *Ledger) classifyAssignConflict(ctx context.Context, oid primitive.ObjectID, equipmentID string) error {
	_, err := l.equipmentDB.FindOne(ctx, bson.M{"_id": oid})
	if err == mongo.ErrNoDocuments {
		return models.NewNotFoundFault("equipment", equipmentID)
	}
	if err != nil {
		return models.NewTransientFault("failed to look up equipment %s: %v", equipmentID, err)
	}
	return models.NewConflictFault(models.CodeEquipmentAlreadyAssigned,
		"equipment %s has an open assignment", equipmentID).WithEntity(equipmentID)
}

// releaseEquipment undoes a reservation whose assignment row could not be
// written. Failure here leaves the item marked out with no open row; log loudly
// so an operator can reconcile.
func (l *Ledger) releaseEquipment(ctx context.Context, oid primitive.ObjectID) {
	_, err := l.equipmentDB.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "equipment.isOut": true},
		bson.M{"$set": bson.M{"equipment.isOut": false, "equipment.updatedAt": primitive.NewDateTimeFromTime(l.now())}},
	)
	if err != nil {
		zap.S().Errorw("failed to release equipment after assignment write failure",
			"equipmentID", oid.Hex(), "error", err)
	}
}

// Return closes the open assignment for the equipment item. Closing the row is
// the compare-and-set here; a second return of the same item finds no open row
// and fails with NoOpenAssignment.
func (l *Ledger) Return(ctx context.Context, equipmentID string, condition models.EquipmentCondition, date time.Time) error {
	oid, err := primitive.ObjectIDFromHex(equipmentID)
	if err != nil {
		return models.NewValidationFault(models.CodeMissingRequiredField, "equipment id %q is malformed", equipmentID)
	}

	now := primitive.NewDateTimeFromTime(l.now())
	returned := primitive.NewDateTimeFromTime(date)
	_, err = l.assignmentDB.FindOneAndUpdate(ctx,
		bson.M{
			"assignment.equipmentID":  equipmentID,
			"assignment.returnedDate": nil,
			"assignment.assignedDate": bson.M{"$lte": returned},
		},
		bson.M{"$set": bson.M{
			"assignment.returnedDate":      returned,
			"assignment.returnedCondition": condition,
			"assignment.updatedAt":         now,
		}},
	)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return l.classifyReturnConflict(ctx, equipmentID, date)
		}
		return models.NewTransientFault("failed to close assignment for equipment %s: %v", equipmentID, err)
	}

	_, err = l.equipmentDB.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "equipment.isOut": true},
		bson.M{"$set": bson.M{"equipment.isOut": false, "equipment.condition": condition, "equipment.updatedAt": now}},
	)
	if err != nil && err != mongo.ErrNoDocuments {
		return models.NewTransientFault("failed to mark equipment %s returned: %v", equipmentID, err)
	}
	return nil
}

// classifyReturnConflict distinguishes a return dated before the assignment
// from the absence of any open assignment.
func (l *Ledger) classifyReturnConflict(ctx context.Context, equipmentID string, date time.Time) error {
	open, err := l.assignmentDB.FindOne(ctx, bson.M{
		"assignment.equipmentID":  equipmentID,
		"assignment.returnedDate": nil,
	})
	if err == mongo.ErrNoDocuments {
		return models.NewConflictFault(models.CodeNoOpenAssignment,
			"equipment %s has no open assignment", equipmentID).WithEntity(equipmentID)
	}
	if err != nil {
		return models.NewTransientFault("failed to look up open assignment for equipment %s: %v", equipmentID, err)
	}
	return models.NewValidationFault(models.CodeInvalidReturnDate,
		"return date %s precedes assignment date %s",
		date.Format(time.RFC3339), open.Details.AssignedDate.Time().Format(time.RFC3339)).WithEntity(equipmentID)
}

// OpenAssignments lists the inspector's open assignments, newest first.
func (l *Ledger) OpenAssignments(ctx context.Context, inspectorID string) ([]models.EquipmentAssignment, error) {
	rows, err := l.assignmentDB.Find(ctx, bson.M{
		"assignment.inspectorID":  inspectorID,
		"assignment.returnedDate": nil,
	})
	if err != nil {
		return nil, models.NewTransientFault("failed to list open assignments for inspector %s: %v", inspectorID, err)
	}
	return rows, nil
}

// AssignmentHistory lists every assignment row ever recorded for the equipment
// item. Rows are closed, never deleted, so this is the full audit trail.
func (l *Ledger) AssignmentHistory(ctx context.Context, equipmentID string) ([]models.EquipmentAssignment, error) {
	rows, err := l.assignmentDB.Find(ctx, bson.M{"assignment.equipmentID": equipmentID})
	if err != nil {
		return nil, models.NewTransientFault("failed to list assignments for equipment %s: %v", equipmentID, err)
	}
	return rows, nil
}
