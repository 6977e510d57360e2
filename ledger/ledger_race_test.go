package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/models"
)

// fakeEquipmentDB is a mutex-guarded stand-in whose FindOneAndUpdate honors the
// isOut compare-and-set the same way the server does: the filter is evaluated
// and the flip applied under one lock, so concurrent callers serialize.
type fakeEquipmentDB struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Equipment
}

func newFakeEquipmentDB() *fakeEquipmentDB {
	return &fakeEquipmentDB{items: map[primitive.ObjectID]*models.Equipment{}}
}

func (f *fakeEquipmentDB) add(e *models.Equipment) { f.items[e.ID] = e }

func (f *fakeEquipmentDB) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) (*models.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := filter.(bson.M)["_id"].(primitive.ObjectID)
	if e, ok := f.items[id]; ok {
		c := *e
		return &c, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeEquipmentDB) Find(_ context.Context, _ interface{}, _ ...*options.FindOptions) ([]models.Equipment, error) {
	return nil, nil
}

func (f *fakeEquipmentDB) InsertOne(_ context.Context, _ interface{}, _ ...*options.InsertOneOptions) (databases.InsertOneResultHelper, error) {
	return nil, nil
}

func (f *fakeEquipmentDB) UpdateOne(_ context.Context, _ interface{}, _ interface{}, _ ...*options.UpdateOptions) (int64, error) {
	return 0, nil
}

func (f *fakeEquipmentDB) FindOneAndUpdate(_ context.Context, filter interface{}, update interface{}, _ ...*options.FindOneAndUpdateOptions) (*models.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fm := filter.(bson.M)
	id := fm["_id"].(primitive.ObjectID)
	e, ok := f.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if want, has := fm["equipment.isOut"]; has && e.Details.IsOut != want.(bool) {
		return nil, mongo.ErrNoDocuments
	}
	set := update.(bson.M)["$set"].(bson.M)
	if v, has := set["equipment.isOut"]; has {
		e.Details.IsOut = v.(bool)
	}
	c := *e
	return &c, nil
}

// fakeAssignmentDB mirrors the open-row compare-and-set: closing a row checks
// returnedDate under the same lock that writes it.
type fakeAssignmentDB struct {
	mu   sync.Mutex
	rows []*models.EquipmentAssignment
}

func (f *fakeAssignmentDB) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) (*models.EquipmentAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if f.matches(r, filter.(bson.M)) {
			c := *r
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeAssignmentDB) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]models.EquipmentAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EquipmentAssignment
	for _, r := range f.rows {
		if f.matches(r, filter.(bson.M)) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeAssignmentDB) InsertOne(_ context.Context, doc interface{}, _ ...*options.InsertOneOptions) (databases.InsertOneResultHelper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := doc.(models.EquipmentAssignment)
	f.rows = append(f.rows, &a)
	return nil, nil
}

func (f *fakeAssignmentDB) FindOneAndUpdate(_ context.Context, filter interface{}, update interface{}, _ ...*options.FindOneAndUpdateOptions) (*models.EquipmentAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if !f.matches(r, filter.(bson.M)) {
			continue
		}
		set := update.(bson.M)["$set"].(bson.M)
		if v, has := set["assignment.returnedDate"]; has {
			d := v.(primitive.DateTime)
			r.Details.ReturnedDate = &d
		}
		if v, has := set["assignment.returnedCondition"]; has {
			r.Details.ReturnedCondition = v.(models.EquipmentCondition)
		}
		c := *r
		return &c, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeAssignmentDB) CountDocuments(_ context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	rows, _ := f.Find(context.Background(), filter)
	return int64(len(rows)), nil
}

func (f *fakeAssignmentDB) DeleteOne(_ context.Context, _ interface{}, _ ...*options.DeleteOptions) error {
	return nil
}

// matches evaluates the narrow filter shapes the ledger issues. Callers must
// hold f.mu.
func (f *fakeAssignmentDB) matches(r *models.EquipmentAssignment, fm bson.M) bool {
	for k, v := range fm {
		switch k {
		case "assignment.equipmentID":
			if r.Details.EquipmentID != v.(string) {
				return false
			}
		case "assignment.inspectorID":
			if r.Details.InspectorID != v.(string) {
				return false
			}
		case "assignment.returnedDate":
			if v == nil {
				if r.Details.ReturnedDate != nil {
					return false
				}
			}
		case "assignment.assignedDate":
			lte := v.(bson.M)["$lte"].(primitive.DateTime)
			if r.Details.AssignedDate > lte {
				return false
			}
		}
	}
	return true
}

func TestAssignConcurrentExactlyOneWins(t *testing.T) {
	equipmentDB := newFakeEquipmentDB()
	assignmentDB := &fakeAssignmentDB{}
	eqID := primitive.NewObjectID()
	equipmentDB.add(&models.Equipment{ID: eqID, Details: models.EquipmentDetails{SerialNumber: "SN-1"}})

	l := NewLedger(equipmentDB, assignmentDB)
	l.now = func() time.Time { return fixedNow }

	const callers = 32
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Assign(context.Background(), eqID.Hex(), "INSP-100", models.ConditionGood, fixedNow)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		fault, ok := models.AsFault(err)
		assert.True(t, ok)
		assert.Equal(t, models.CodeEquipmentAlreadyAssigned, fault.Code)
	}
	assert.Equal(t, 1, successes)

	open, err := assignmentDB.Find(context.Background(), bson.M{
		"assignment.equipmentID":  eqID.Hex(),
		"assignment.returnedDate": nil,
	})
	assert.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestReturnSecondCallFindsNoOpenAssignment(t *testing.T) {
	equipmentDB := newFakeEquipmentDB()
	assignmentDB := &fakeAssignmentDB{}
	eqID := primitive.NewObjectID()
	equipmentDB.add(&models.Equipment{ID: eqID})

	l := NewLedger(equipmentDB, assignmentDB)
	l.now = func() time.Time { return fixedNow }

	_, err := l.Assign(context.Background(), eqID.Hex(), "INSP-100", models.ConditionGood, fixedNow.Add(-time.Hour))
	assert.NoError(t, err)

	assert.NoError(t, l.Return(context.Background(), eqID.Hex(), models.ConditionFair, fixedNow))

	err = l.Return(context.Background(), eqID.Hex(), models.ConditionFair, fixedNow)
	fault, ok := models.AsFault(err)
	assert.True(t, ok)
	assert.Equal(t, models.CodeNoOpenAssignment, fault.Code)
}

func TestAssignAfterReturnReopens(t *testing.T) {
	equipmentDB := newFakeEquipmentDB()
	assignmentDB := &fakeAssignmentDB{}
	eqID := primitive.NewObjectID()
	equipmentDB.add(&models.Equipment{ID: eqID})

	l := NewLedger(equipmentDB, assignmentDB)
	l.now = func() time.Time { return fixedNow }

	_, err := l.Assign(context.Background(), eqID.Hex(), "INSP-100", models.ConditionGood, fixedNow.Add(-2*time.Hour))
	assert.NoError(t, err)
	assert.NoError(t, l.Return(context.Background(), eqID.Hex(), models.ConditionFair, fixedNow.Add(-time.Hour)))

	id, err := l.Assign(context.Background(), eqID.Hex(), "INSP-200", models.ConditionFair, fixedNow)
	assert.NoError(t, err)
	assert.NotEmpty(t, id)

	history, err := l.AssignmentHistory(context.Background(), eqID.Hex())
	assert.NoError(t, err)
	assert.Len(t, history, 2)
}
