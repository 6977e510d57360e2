package databases

// go generate: mockery --name EquipmentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldserve/inspector-api/models"
)

const equipmentName = "equipment"

// EquipmentDatabase contains the methods to use with the equipment database
type EquipmentDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Equipment, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Equipment, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (int64, error)
	FindOneAndUpdate(context.Context, interface{}, interface{}, ...*options.FindOneAndUpdateOptions) (*models.Equipment, error)
}

type equipmentDatabase struct {
	db DatabaseHelper
}

// NewEquipmentDatabase initializes a new instance of equipment database with the
// provided db connection
func NewEquipmentDatabase(db DatabaseHelper) EquipmentDatabase {
	return &equipmentDatabase{
		db: db,
	}
}

func (e *equipmentDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Equipment, error) {
	equipment := &models.Equipment{}
	err := e.db.Collection(equipmentName).FindOne(ctx, filter, opts...).Decode(&equipment)
	if err != nil {
		return nil, err
	}
	return equipment, nil
}

func (e *equipmentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Equipment, error) {
	var items []models.Equipment
	cur := e.db.Collection(equipmentName).Find(ctx, filter, opts...)
	err := cur.Decode(&items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (e *equipmentDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return e.db.Collection(equipmentName).InsertOne(ctx, document, opts...)
}

func (e *equipmentDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return e.db.Collection(equipmentName).UpdateOne(ctx, filter, update, opts...)
}

// FindOneAndUpdate is the compare-and-set the ledger uses to flip isOut; the
// filter carries the expected current value so two racing assigns cannot both
// match.
func (e *equipmentDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Equipment, error) {
	equipment := &models.Equipment{}
	err := e.db.Collection(equipmentName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&equipment)
	if err != nil {
		return nil, err
	}
	return equipment, nil
}
