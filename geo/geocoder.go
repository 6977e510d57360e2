package geo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/models"
)

// Geocoder resolves a ZIP code to a point, the centroid of the ZIP area.
type Geocoder interface {
	Resolve(ctx context.Context, zipCode string) (*models.GeoPoint, error)
}

type zipCodeGeocoder struct {
	zipDB databases.ZipCodeDatabase
}

// NewZipCodeGeocoder resolves ZIP codes against the zipcodes centroid
// collection. ZIP+4 codes resolve through their five digit prefix.
func NewZipCodeGeocoder(zipDB databases.ZipCodeDatabase) Geocoder {
	return &zipCodeGeocoder{zipDB: zipDB}
}

func (g *zipCodeGeocoder) Resolve(ctx context.Context, zipCode string) (*models.GeoPoint, error) {
	zip5 := zipCode
	if i := strings.Index(zipCode, "-"); i >= 0 {
		zip5 = zipCode[:i]
	}
	row, err := g.zipDB.FindOne(ctx, bson.M{"zip": zip5})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewNotFoundFault("zip code", zip5)
		}
		return nil, models.NewTransientFault("failed to resolve zip code %s: %v", zip5, err)
	}
	return &row.Location, nil
}
