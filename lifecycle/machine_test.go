package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldserve/inspector-api/databases/mocks"
	"github.com/fieldserve/inspector-api/models"
)

var machineNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestMachine(db *mocks.InspectorDatabase) *Machine {
	m := NewMachine(db)
	m.now = func() time.Time { return machineNow }
	return m
}

func mobilizedInspector(inspectorID string) *models.Inspector {
	return &models.Inspector{
		ID: primitive.NewObjectID(),
		Details: models.InspectorDetails{
			InspectorID: inspectorID,
			Status:      models.StatusMobilized,
			Email:       "inspector@example.com",
		},
	}
}

func TestTransitionCommitsWithStateFilter(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	db.On("FindOneAndUpdate", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		fm, ok := filter.(bson.M)
		if !ok || fm["inspector.inspectorID"] != "INSP-100" {
			return false
		}
		in, ok := fm["inspector.status"].(bson.M)["$in"].([]models.InspectorStatus)
		return ok && len(in) == 2
	}), mock.MatchedBy(func(update interface{}) bool {
		set := update.(bson.M)["$set"].(bson.M)
		return set["inspector.status"] == models.StatusMobilized
	})).Return(mobilizedInspector("INSP-100"), nil)

	m := newTestMachine(db)
	updated, err := m.Transition(context.Background(), "INSP-100",
		[]models.InspectorStatus{models.StatusActive, models.StatusDemobilized},
		models.StatusMobilized, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusMobilized, updated.Details.Status)
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	m := newTestMachine(nil)

	_, err := m.Transition(context.Background(), "INSP-100",
		[]models.InspectorStatus{models.StatusPending},
		models.StatusMobilized, nil)
	fault, ok := models.AsFault(err)
	assert.True(t, ok)
	assert.Equal(t, models.CodeInvalidStateTransition, fault.Code)
}

func TestTransitionConflictReportsActualState(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, mongo.ErrNoDocuments)
	current := mobilizedInspector("INSP-100")
	current.Details.Status = models.StatusPending
	db.On("FindOne", mock.Anything, bson.M{"inspector.inspectorID": "INSP-100"}).
		Return(current, nil)

	m := newTestMachine(db)
	_, err := m.Transition(context.Background(), "INSP-100",
		[]models.InspectorStatus{models.StatusActive},
		models.StatusMobilized, nil)
	fault, ok := models.AsFault(err)
	assert.True(t, ok)
	assert.Equal(t, models.CodeInvalidStateTransition, fault.Code)
	assert.Equal(t, string(models.StatusPending), fault.Actual)
	assert.Equal(t, string(models.StatusMobilized), fault.Expected)
}

func TestTransitionUnknownInspector(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, mongo.ErrNoDocuments)
	db.On("FindOne", mock.Anything, mock.Anything).
		Return(nil, mongo.ErrNoDocuments)

	m := newTestMachine(db)
	_, err := m.Transition(context.Background(), "INSP-404",
		[]models.InspectorStatus{models.StatusActive},
		models.StatusMobilized, nil)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestActivateFromPending(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	activated := mobilizedInspector("INSP-100")
	activated.Details.Status = models.StatusActive
	db.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.MatchedBy(func(update interface{}) bool {
		set := update.(bson.M)["$set"].(bson.M)
		return set["inspector.status"] == models.StatusActive && set["inspector.isActive"] == true
	})).Return(activated, nil)

	m := newTestMachine(db)
	updated, err := m.Activate(context.Background(), "INSP-100")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Details.Status)
}
