package databases

// go generate: mockery --name InspectorDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldserve/inspector-api/models"
)

const inspectorName = "inspectors"

// InspectorDatabase contains the methods to use with the inspector database
type InspectorDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Inspector, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Inspector, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (int64, error)
	FindOneAndUpdate(context.Context, interface{}, interface{}, ...*options.FindOneAndUpdateOptions) (*models.Inspector, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	GeoNear(context.Context, interface{}, ...*options.AggregateOptions) ([]models.InspectorGeoResult, error)
}

type inspectorDatabase struct {
	db DatabaseHelper
}

// NewInspectorDatabase initializes a new instance of inspector database with the
// provided db connection
func NewInspectorDatabase(db DatabaseHelper) InspectorDatabase {
	return &inspectorDatabase{
		db: db,
	}
}

func (i *inspectorDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Inspector, error) {
	inspector := &models.Inspector{}
	err := i.db.Collection(inspectorName).FindOne(ctx, filter, opts...).Decode(&inspector)
	if err != nil {
		return nil, err
	}
	return inspector, nil
}

func (i *inspectorDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Inspector, error) {
	var inspectors []models.Inspector
	cur := i.db.Collection(inspectorName).Find(ctx, filter, opts...)
	err := cur.Decode(&inspectors)
	if err != nil {
		return nil, err
	}
	return inspectors, nil
}

func (i *inspectorDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return i.db.Collection(inspectorName).InsertOne(ctx, document, opts...)
}

func (i *inspectorDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return i.db.Collection(inspectorName).UpdateOne(ctx, filter, update, opts...)
}

// FindOneAndUpdate applies update to the single document matching filter and
// returns it. The state machine relies on the filter/update pair executing
// atomically server-side.
func (i *inspectorDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Inspector, error) {
	inspector := &models.Inspector{}
	err := i.db.Collection(inspectorName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&inspector)
	if err != nil {
		return nil, err
	}
	return inspector, nil
}

func (i *inspectorDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return i.db.Collection(inspectorName).CountDocuments(ctx, filter, opts...)
}

// GeoNear runs the radius-search aggregation pipeline and decodes the
// distance-annotated candidates.
func (i *inspectorDatabase) GeoNear(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) ([]models.InspectorGeoResult, error) {
	cur, err := i.db.Collection(inspectorName).Aggregate(ctx, pipeline, opts...)
	if err != nil {
		return nil, err
	}
	var results []models.InspectorGeoResult
	if err := cur.Decode(&results); err != nil {
		return nil, err
	}
	return results, nil
}
