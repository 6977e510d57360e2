package databases

// go generate: mockery --name ZipCodeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldserve/inspector-api/models"
)

const zipCodeName = "zipcodes"

// ZipCodeDatabase contains the methods to use with the zip code centroid table
type ZipCodeDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.ZipCode, error)
}

type zipCodeDatabase struct {
	db DatabaseHelper
}

// NewZipCodeDatabase initializes a new instance of zip code database with the
// provided db connection
func NewZipCodeDatabase(db DatabaseHelper) ZipCodeDatabase {
	return &zipCodeDatabase{
		db: db,
	}
}

func (z *zipCodeDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ZipCode, error) {
	zip := &models.ZipCode{}
	err := z.db.Collection(zipCodeName).FindOne(ctx, filter, opts...).Decode(&zip)
	if err != nil {
		return nil, err
	}
	return zip, nil
}
