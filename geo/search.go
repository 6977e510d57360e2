package geo

import (
	"context"
	"math"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/models"
)

var zipCodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

const (
	metersPerMile = 1609.344

	minRadiusMiles = 1.0
	maxRadiusMiles = 500.0

	defaultPageSize = 25
	maxPageSize     = 100
)

// ComplianceChecker is the slice of the compliance tracker the search needs to
// honor a hasValidDrugTest filter.
type ComplianceChecker interface {
	IsCompliant(ctx context.Context, inspectorID string, asOf time.Time) (bool, error)
}

// SearchFilters narrow the candidate set after the radius constraint. Slice
// filters are subset matches: a candidate qualifies only if it carries every
// listed value.
type SearchFilters struct {
	Status           string   `json:"status"`
	Specialties      []string `json:"specialties"`
	Certifications   []string `json:"certifications"`
	HasValidDrugTest bool     `json:"hasValidDrugTest"`
}

// SearchParams is a radius search request. PageNumber is zero-based, matching
// every other paginated surface in the API.
type SearchParams struct {
	ZipCode     string        `json:"zipCode"`
	RadiusMiles float64       `json:"radiusMiles"`
	Filters     SearchFilters `json:"filters"`
	PageNumber  int           `json:"pageNumber"`
	PageSize    int           `json:"pageSize"`
}

// Searcher finds inspectors within a great-circle radius of a ZIP code
// centroid, using the 2dsphere index on the inspectors collection.
type Searcher struct {
	inspectorDB databases.InspectorDatabase
	geocoder    Geocoder
	compliance  ComplianceChecker
	now         func() time.Time
}

// NewSearcher wires a searcher against the inspector collection.
func NewSearcher(inspectorDB databases.InspectorDatabase, geocoder Geocoder, compliance ComplianceChecker) *Searcher {
	return &Searcher{
		inspectorDB: inspectorDB,
		geocoder:    geocoder,
		compliance:  compliance,
		now:         time.Now,
	}
}

// Search runs the radius query and applies the candidate filters. A search
// that matches nothing returns an empty page, not an error.
func (s *Searcher) Search(ctx context.Context, params SearchParams) (*models.InspectorSearchPage, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	page, size := normalizePage(params.PageNumber, params.PageSize)

	origin, err := s.geocoder.Resolve(ctx, params.ZipCode)
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return nil, models.NewValidationFault(models.CodeInvalidSearchParameters, "unknown zip code %s", params.ZipCode)
		}
		return nil, err
	}

	results, err := s.inspectorDB.GeoNear(ctx, geoNearPipeline(*origin, params))
	if err != nil {
		return nil, models.NewTransientFault("radius search failed: %v", err)
	}

	candidates, err := s.applyCompliance(ctx, results, params.Filters)
	if err != nil {
		return nil, err
	}

	// $geoNear orders by distance; re-sort to pin the inspectorID tie-break.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DistanceMeters != candidates[j].DistanceMeters {
			return candidates[i].DistanceMeters < candidates[j].DistanceMeters
		}
		return candidates[i].Details.InspectorID < candidates[j].Details.InspectorID
	})

	return paginate(candidates, page, size), nil
}

func validateParams(params SearchParams) error {
	if !zipCodePattern.MatchString(params.ZipCode) {
		return models.NewValidationFault(models.CodeInvalidSearchParameters, "zip code %q is malformed", params.ZipCode)
	}
	if params.RadiusMiles < minRadiusMiles || params.RadiusMiles > maxRadiusMiles {
		return models.NewValidationFault(models.CodeInvalidSearchParameters,
			"radius %.1f miles is outside [%.0f, %.0f]", params.RadiusMiles, minRadiusMiles, maxRadiusMiles)
	}
	if params.Filters.Status != "" {
		if _, ok := models.ParseInspectorStatus(params.Filters.Status); !ok {
			return models.NewValidationFault(models.CodeInvalidSearchParameters, "unknown status filter %q", params.Filters.Status)
		}
	}
	return nil
}

func normalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// geoNearPipeline builds the aggregation with the radius constraint and the
// cheap filters pushed down to the server. Compliance stays client-side.
func geoNearPipeline(origin models.GeoPoint, params SearchParams) []bson.M {
	query := bson.M{}
	if params.Filters.Status != "" {
		query["inspector.status"] = params.Filters.Status
	}
	if len(params.Filters.Specialties) > 0 {
		query["inspector.specialties"] = bson.M{"$all": params.Filters.Specialties}
	}
	if len(params.Filters.Certifications) > 0 {
		query["inspector.certifications"] = bson.M{"$all": params.Filters.Certifications}
	}

	return []bson.M{
		{
			"$geoNear": bson.M{
				"near":          bson.M{"type": "Point", "coordinates": origin.Coordinates},
				"key":           "inspector.location",
				"distanceField": "distance",
				"maxDistance":   params.RadiusMiles * metersPerMile,
				"spherical":     true,
				"query":         query,
			},
		},
		{
			"$sort": bson.D{
				{Key: "distance", Value: 1},
				{Key: "inspector.inspectorID", Value: 1},
			},
		},
	}
}

func (s *Searcher) applyCompliance(ctx context.Context, results []models.InspectorGeoResult, filters SearchFilters) ([]models.InspectorGeoResult, error) {
	if !filters.HasValidDrugTest {
		return results, nil
	}
	asOf := s.now()
	kept := results[:0]
	for _, r := range results {
		ok, err := s.compliance.IsCompliant(ctx, r.Details.InspectorID, asOf)
		if err != nil {
			zap.S().Errorw("compliance check failed during search", "inspectorID", r.Details.InspectorID, "error", err)
			return nil, err
		}
		if ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func paginate(candidates []models.InspectorGeoResult, page, size int) *models.InspectorSearchPage {
	total := int64(len(candidates))
	start := page * size
	if start > len(candidates) {
		start = len(candidates)
	}
	end := start + size
	if end > len(candidates) {
		end = len(candidates)
	}

	items := make([]models.InspectorSearchItem, 0, end-start)
	for _, r := range candidates[start:end] {
		items = append(items, models.InspectorSearchItem{
			Inspector:     r.Inspector,
			DistanceMiles: roundMiles(r.DistanceMeters / metersPerMile),
		})
	}
	return &models.InspectorSearchPage{
		Items:      items,
		TotalCount: total,
		PageNumber: page,
		PageSize:   size,
	}
}

func roundMiles(miles float64) float64 {
	return math.Round(miles*100) / 100
}
