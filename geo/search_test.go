package geo

import (
	"context"
	"errors"
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

type stubGeocoder struct {
	point *models.GeoPoint
	err   error
}

func (s *stubGeocoder) Resolve(_ context.Context, _ string) (*models.GeoPoint, error) {
	return s.point, s.err
}

type stubCompliance struct {
	compliant map[string]bool
	err       error
}

func (s *stubCompliance) IsCompliant(_ context.Context, inspectorID string, _ time.Time) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.compliant[inspectorID], nil
}

func candidate(inspectorID string, distanceMeters float64) models.InspectorGeoResult {
	return models.InspectorGeoResult{
		Inspector: models.Inspector{
			ID: primitive.NewObjectID(),
			Details: models.InspectorDetails{
				InspectorID: inspectorID,
				Status:      models.StatusActive,
			},
		},
		DistanceMeters: distanceMeters,
	}
}

func originPoint() *models.GeoPoint {
	p := models.NewGeoPoint(-95.3698, 29.7604)
	return &p
}

func newTestSearcher(db *mocks.InspectorDatabase, compliance ComplianceChecker) *Searcher {
	s := NewSearcher(db, &stubGeocoder{point: originPoint()}, compliance)
	s.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestSearchRejectsMalformedZip(t *testing.T) {
	s := NewSearcher(nil, nil, nil)

	for _, zip := range []string{"1234", "123456", "abcde", "77002-12"} {
		_, err := s.Search(context.Background(), SearchParams{ZipCode: zip, RadiusMiles: 50})
		fault, ok := models.AsFault(err)
		assert.True(t, ok, zip)
		assert.Equal(t, models.CodeInvalidSearchParameters, fault.Code)
	}
}

func TestSearchAcceptsZipPlusFour(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	db.On("GeoNear", mock.Anything, mock.Anything).Return([]models.InspectorGeoResult{}, nil)

	s := newTestSearcher(db, &stubCompliance{})
	page, err := s.Search(context.Background(), SearchParams{ZipCode: "77002-1234", RadiusMiles: 50})
	assert.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestSearchRejectsRadiusOutOfRange(t *testing.T) {
	s := NewSearcher(nil, nil, nil)

	for _, radius := range []float64{0, 0.5, 501, -10} {
		_, err := s.Search(context.Background(), SearchParams{ZipCode: "77002", RadiusMiles: radius})
		fault, ok := models.AsFault(err)
		assert.True(t, ok)
		assert.Equal(t, models.CodeInvalidSearchParameters, fault.Code)
	}
}

func TestSearchRejectsUnknownStatusFilter(t *testing.T) {
	s := NewSearcher(nil, nil, nil)

	_, err := s.Search(context.Background(), SearchParams{
		ZipCode:     "77002",
		RadiusMiles: 50,
		Filters:     SearchFilters{Status: "vacationing"},
	})
	fault, ok := models.AsFault(err)
	assert.True(t, ok)
	assert.Equal(t, models.CodeInvalidSearchParameters, fault.Code)
}

func TestSearchUnknownZipIsValidationFault(t *testing.T) {
	s := NewSearcher(nil, &stubGeocoder{err: models.NewNotFoundFault("zip code", "99999")}, nil)

	_, err := s.Search(context.Background(), SearchParams{ZipCode: "99999", RadiusMiles: 50})
	fault, ok := models.AsFault(err)
	assert.True(t, ok)
	assert.Equal(t, models.KindValidation, fault.Kind)
}

func TestSearchEmptyResultIsEmptyPage(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	db.On("GeoNear", mock.Anything, mock.Anything).Return([]models.InspectorGeoResult{}, nil)

	s := newTestSearcher(db, &stubCompliance{})
	page, err := s.Search(context.Background(), SearchParams{ZipCode: "77002", RadiusMiles: 50})
	assert.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.TotalCount)
}

func TestSearchOrdersByDistanceThenInspectorID(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	db.On("GeoNear", mock.Anything, mock.Anything).Return([]models.InspectorGeoResult{
		candidate("INSP-300", 5000),
		candidate("INSP-100", 5000),
		candidate("INSP-200", 1000),
	}, nil)

	s := newTestSearcher(db, &stubCompliance{})
	page, err := s.Search(context.Background(), SearchParams{ZipCode: "77002", RadiusMiles: 50})
	assert.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, "INSP-200", page.Items[0].Inspector.Details.InspectorID)
	assert.Equal(t, "INSP-100", page.Items[1].Inspector.Details.InspectorID)
	assert.Equal(t, "INSP-300", page.Items[2].Inspector.Details.InspectorID)
}

func TestSearchConvertsDistanceToMiles(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	db.On("GeoNear", mock.Anything, mock.Anything).Return([]models.InspectorGeoResult{
		candidate("INSP-100", 1609.344),
	}, nil)

	s := newTestSearcher(db, &stubCompliance{})
	page, err := s.Search(context.Background(), SearchParams{ZipCode: "77002", RadiusMiles: 50})
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, page.Items[0].DistanceMiles, 0.001)
}

func TestSearchHasValidDrugTestFiltersCandidates(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	db.On("GeoNear", mock.Anything, mock.Anything).Return([]models.InspectorGeoResult{
		candidate("INSP-100", 1000),
		candidate("INSP-200", 2000),
	}, nil)

	compliance := &stubCompliance{compliant: map[string]bool{"INSP-100": true}}
	s := newTestSearcher(db, compliance)
	page, err := s.Search(context.Background(), SearchParams{
		ZipCode:     "77002",
		RadiusMiles: 50,
		Filters:     SearchFilters{HasValidDrugTest: true},
	})
	assert.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "INSP-100", page.Items[0].Inspector.Details.InspectorID)
	assert.Equal(t, int64(1), page.TotalCount)
}

func TestSearchComplianceErrorSurfaces(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	db.On("GeoNear", mock.Anything, mock.Anything).Return([]models.InspectorGeoResult{
		candidate("INSP-100", 1000),
	}, nil)

	s := newTestSearcher(db, &stubCompliance{err: models.NewTransientFault("history unavailable")})
	_, err := s.Search(context.Background(), SearchParams{
		ZipCode:     "77002",
		RadiusMiles: 50,
		Filters:     SearchFilters{HasValidDrugTest: true},
	})
	assert.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindTransient))
}

func TestSearchPaginates(t *testing.T) {
	results := []models.InspectorGeoResult{
		candidate("INSP-100", 1000),
		candidate("INSP-200", 2000),
		candidate("INSP-300", 3000),
	}
	db := mocks.NewInspectorDatabase(t)
	db.On("GeoNear", mock.Anything, mock.Anything).Return(results, nil)

	s := newTestSearcher(db, &stubCompliance{})
	page, err := s.Search(context.Background(), SearchParams{
		ZipCode:     "77002",
		RadiusMiles: 50,
		PageNumber:  1,
		PageSize:    2,
	})
	assert.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "INSP-300", page.Items[0].Inspector.Details.InspectorID)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, 2, page.PageSize)
}

func TestSearchPushesFiltersIntoPipeline(t *testing.T) {
	db := mocks.NewInspectorDatabase(t)
	db.On("GeoNear", mock.Anything, mock.MatchedBy(func(pipeline interface{}) bool {
		stages, ok := pipeline.([]bson.M)
		if !ok || len(stages) == 0 {
			return false
		}
		near, ok := stages[0]["$geoNear"].(bson.M)
		if !ok {
			return false
		}
		query, ok := near["query"].(bson.M)
		return ok && query["inspector.status"] == "active"
	})).Return([]models.InspectorGeoResult{}, nil)

	s := newTestSearcher(db, &stubCompliance{})
	_, err := s.Search(context.Background(), SearchParams{
		ZipCode:     "77002",
		RadiusMiles: 50,
		Filters:     SearchFilters{Status: "active", Specialties: []string{"welding"}},
	})
	assert.NoError(t, err)
}

func TestZipCodeGeocoderResolvesCentroid(t *testing.T) {
	zipDB := mocks.NewZipCodeDatabase(t)
	zipDB.On("FindOne", mock.Anything, bson.M{"zip": "77002"}).Return(&models.ZipCode{
		Zip:      "77002",
		Location: models.NewGeoPoint(-95.3698, 29.7604),
	}, nil)

	g := NewZipCodeGeocoder(zipDB)
	point, err := g.Resolve(context.Background(), "77002-1234")
	assert.NoError(t, err)
	assert.Equal(t, []float64{-95.3698, 29.7604}, point.Coordinates)
}

func TestZipCodeGeocoderUnknownZip(t *testing.T) {
	zipDB := mocks.NewZipCodeDatabase(t)
	zipDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	g := NewZipCodeGeocoder(zipDB)
	_, err := g.Resolve(context.Background(), "99999")
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestZipCodeGeocoderTransientError(t *testing.T) {
	zipDB := mocks.NewZipCodeDatabase(t)
	zipDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	g := NewZipCodeGeocoder(zipDB)
	_, err := g.Resolve(context.Background(), "77002")
	assert.True(t, models.IsKind(err, models.KindTransient))
}
