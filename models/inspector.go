package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InspectorStatus is the closed set of lifecycle states an inspector moves through.
type InspectorStatus string

// Inspector lifecycle states. Pending is the initial state; Inactive is terminal.
const (
	StatusPending     InspectorStatus = "pending"
	StatusActive      InspectorStatus = "active"
	StatusMobilized   InspectorStatus = "mobilized"
	StatusDemobilized InspectorStatus = "demobilized"
	StatusInactive    InspectorStatus = "inactive"
)

// ParseInspectorStatus returns the typed status for s, or false when s is not a
// known lifecycle state.
func ParseInspectorStatus(s string) (InspectorStatus, bool) {
	switch InspectorStatus(s) {
	case StatusPending, StatusActive, StatusMobilized, StatusDemobilized, StatusInactive:
		return InspectorStatus(s), true
	}
	return "", false
}

// DemobilizationReason is the closed set of reasons an inspector can be demobilized.
type DemobilizationReason string

// Demobilization reasons.
const (
	ReasonProjectComplete DemobilizationReason = "project_complete"
	ReasonCustomerRequest DemobilizationReason = "customer_request"
	ReasonPerformance     DemobilizationReason = "performance"
	ReasonMedical         DemobilizationReason = "medical"
	ReasonResignation     DemobilizationReason = "resignation"
	ReasonOther           DemobilizationReason = "other"
)

// ParseDemobilizationReason returns the typed reason for s, or false when s is not
// an enumerated reason.
func ParseDemobilizationReason(s string) (DemobilizationReason, bool) {
	switch DemobilizationReason(s) {
	case ReasonProjectComplete, ReasonCustomerRequest, ReasonPerformance,
		ReasonMedical, ReasonResignation, ReasonOther:
		return DemobilizationReason(s), true
	}
	return "", false
}

// GeoPoint is a GeoJSON point as stored under a 2dsphere index.
// Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a longitude/latitude pair.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Inspector holds the structure for the inspectors collection in mongo
type Inspector struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details InspectorDetails   `json:"inspector" bson:"inspector"`
	Version int32              `json:"__v" bson:"__v"`
}

// InspectorDetails holds the structure for the inner inspector structure as
// defined in the inspectors collection in mongo
type InspectorDetails struct {
	InspectorID            string               `json:"inspectorID" bson:"inspectorID"`
	FirstName              string               `json:"firstName" bson:"firstName"`
	LastName               string               `json:"lastName" bson:"lastName"`
	Email                  string               `json:"email" bson:"email"`
	Status                 InspectorStatus      `json:"status" bson:"status"`
	State                  string               `json:"state" bson:"state"`
	Specialties            []string             `json:"specialties" bson:"specialties"`
	Classification         string               `json:"classification" bson:"classification"`
	HireType               string               `json:"hireType" bson:"hireType"`
	CertificationRequired  bool                 `json:"certificationRequired" bson:"certificationRequired"`
	RequiredCertifications []string             `json:"requiredCertifications" bson:"requiredCertifications"`
	Certifications         []string             `json:"certifications" bson:"certifications"`
	Location               GeoPoint             `json:"location" bson:"location"`
	MobilizationDate       *primitive.DateTime  `json:"mobilizationDate" bson:"mobilizationDate"`
	DemobilizationDate     *primitive.DateTime  `json:"demobilizationDate" bson:"demobilizationDate"`
	DemobilizationReason   DemobilizationReason `json:"demobilizationReason,omitempty" bson:"demobilizationReason,omitempty"`
	DemobilizationNote     string               `json:"demobilizationNote,omitempty" bson:"demobilizationNote,omitempty"`
	CurrentProject         string               `json:"currentProject,omitempty" bson:"currentProject,omitempty"`
	CurrentCustomer        string               `json:"currentCustomer,omitempty" bson:"currentCustomer,omitempty"`
	LastDrugTestDate       *primitive.DateTime  `json:"lastDrugTestDate" bson:"lastDrugTestDate"`
	LastDrugTestResult     DrugTestResult       `json:"lastDrugTestResult,omitempty" bson:"lastDrugTestResult,omitempty"`
	IsActive               bool                 `json:"isActive" bson:"isActive"`
	CreatedAt              primitive.DateTime   `json:"createdAt" bson:"createdAt"`
	UpdatedAt              primitive.DateTime   `json:"updatedAt" bson:"updatedAt"`
}

// FullName returns the inspector's display name.
func (d InspectorDetails) FullName() string {
	if d.FirstName == "" {
		return d.LastName
	}
	return d.FirstName + " " + d.LastName
}

// InspectorGeoResult is an inspector document annotated with the distance
// (meters) computed by the $geoNear stage.
type InspectorGeoResult struct {
	Inspector      `bson:",inline"`
	DistanceMeters float64 `bson:"distance" json:"-"`
}

// InspectorSearchItem is a search candidate together with its computed distance
// from the search origin.
type InspectorSearchItem struct {
	Inspector     Inspector `json:"inspector"`
	DistanceMiles float64   `json:"distanceMiles"`
}

// InspectorSearchPage is the paginated result of a radius search.
type InspectorSearchPage struct {
	Items      []InspectorSearchItem `json:"items"`
	TotalCount int64                 `json:"totalCount"`
	PageNumber int                   `json:"pageNumber"`
	PageSize   int                   `json:"pageSize"`
}
