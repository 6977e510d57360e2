package databases

// go generate: mockery --name DrugTestDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldserve/inspector-api/models"
)

const drugTestName = "drugTests"

// DrugTestDatabase contains the methods to use with the drug test database.
// Records are append-only; there is deliberately no update or delete here.
type DrugTestDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.DrugTestRecord, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.DrugTestRecord, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	History(ctx context.Context, inspectorID string, limit, page int) ([]models.DrugTestRecord, error)
}

type drugTestDatabase struct {
	db DatabaseHelper
}

// NewDrugTestDatabase initializes a new instance of drug test database with the
// provided db connection
func NewDrugTestDatabase(db DatabaseHelper) DrugTestDatabase {
	return &drugTestDatabase{
		db: db,
	}
}

func (d *drugTestDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.DrugTestRecord, error) {
	record := &models.DrugTestRecord{}
	err := d.db.Collection(drugTestName).FindOne(ctx, filter, opts...).Decode(&record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (d *drugTestDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.DrugTestRecord, error) {
	var records []models.DrugTestRecord
	cur := d.db.Collection(drugTestName).Find(ctx, filter, opts...)
	err := cur.Decode(&records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (d *drugTestDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return d.db.Collection(drugTestName).InsertOne(ctx, document, opts...)
}

func (d *drugTestDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return d.db.Collection(drugTestName).CountDocuments(ctx, filter, opts...)
}

// History returns the inspector's test records newest first, one zero-based
// page at a time.
func (d *drugTestDatabase) History(ctx context.Context, inspectorID string, limit, page int) ([]models.DrugTestRecord, error) {
	opts := pageFindOptions(limit, page)
	opts.SetSort(bson.D{{Key: "drugTest.testDate", Value: -1}})
	return d.Find(ctx, bson.M{"drugTest.inspectorID": inspectorID}, opts)
}
