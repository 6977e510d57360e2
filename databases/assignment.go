package databases

// go generate: mockery --name AssignmentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldserve/inspector-api/models"
)

const assignmentName = "equipmentAssignments"

// AssignmentDatabase contains the methods to use with the equipment assignment
// database
type AssignmentDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.EquipmentAssignment, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.EquipmentAssignment, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	FindOneAndUpdate(context.Context, interface{}, interface{}, ...*options.FindOneAndUpdateOptions) (*models.EquipmentAssignment, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
}

type assignmentDatabase struct {
	db DatabaseHelper
}

// NewAssignmentDatabase initializes a new instance of assignment database with
// the provided db connection
func NewAssignmentDatabase(db DatabaseHelper) AssignmentDatabase {
	return &assignmentDatabase{
		db: db,
	}
}

func (a *assignmentDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.EquipmentAssignment, error) {
	assignment := &models.EquipmentAssignment{}
	err := a.db.Collection(assignmentName).FindOne(ctx, filter, opts...).Decode(&assignment)
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

func (a *assignmentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.EquipmentAssignment, error) {
	var assignments []models.EquipmentAssignment
	cur := a.db.Collection(assignmentName).Find(ctx, filter, opts...)
	err := cur.Decode(&assignments)
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (a *assignmentDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return a.db.Collection(assignmentName).InsertOne(ctx, document, opts...)
}

// FindOneAndUpdate closes the single open row matching filter; the
// returnedDate == nil condition in the filter makes Return idempotence a store
// guarantee rather than an application check.
func (a *assignmentDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.EquipmentAssignment, error) {
	assignment := &models.EquipmentAssignment{}
	err := a.db.Collection(assignmentName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&assignment)
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

func (a *assignmentDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return a.db.Collection(assignmentName).CountDocuments(ctx, filter, opts...)
}

func (a *assignmentDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return a.db.Collection(assignmentName).DeleteOne(ctx, filter, opts...)
}
