package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrugTestType is the closed set of test types.
type DrugTestType string

// Drug test types. Random and PreEmployment establish the compliance baseline.
const (
	TestPreEmployment       DrugTestType = "pre_employment"
	TestRandom              DrugTestType = "random"
	TestPostIncident        DrugTestType = "post_incident"
	TestReasonableSuspicion DrugTestType = "reasonable_suspicion"
)

// ParseDrugTestType returns the typed test type for s, or false when unknown.
func ParseDrugTestType(s string) (DrugTestType, bool) {
	switch DrugTestType(s) {
	case TestPreEmployment, TestRandom, TestPostIncident, TestReasonableSuspicion:
		return DrugTestType(s), true
	}
	return "", false
}

// DrugTestFrequency is the closed set of retest frequencies.
type DrugTestFrequency string

// Retest frequencies.
const (
	FrequencyMonthly    DrugTestFrequency = "monthly"
	FrequencyQuarterly  DrugTestFrequency = "quarterly"
	FrequencySemiAnnual DrugTestFrequency = "semi_annual"
	FrequencyAnnual     DrugTestFrequency = "annual"
)

// ParseDrugTestFrequency returns the typed frequency for s, or false when unknown.
func ParseDrugTestFrequency(s string) (DrugTestFrequency, bool) {
	switch DrugTestFrequency(s) {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiAnnual, FrequencyAnnual:
		return DrugTestFrequency(s), true
	}
	return "", false
}

// DrugTestResult is the closed set of test outcomes.
type DrugTestResult string

// Test outcomes. A record is immutable once its result is no longer Pending.
const (
	ResultNegative     DrugTestResult = "negative"
	ResultPositive     DrugTestResult = "positive"
	ResultInconclusive DrugTestResult = "inconclusive"
	ResultPending      DrugTestResult = "pending"
)

// ParseDrugTestResult returns the typed result for s, or false when unknown.
func ParseDrugTestResult(s string) (DrugTestResult, bool) {
	switch DrugTestResult(s) {
	case ResultNegative, ResultPositive, ResultInconclusive, ResultPending:
		return DrugTestResult(s), true
	}
	return "", false
}

// DrugTestRecord holds the structure for the drugTests collection in mongo.
// Records belong to exactly one inspector and are never deleted.
type DrugTestRecord struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details DrugTestDetails    `json:"drugTest" bson:"drugTest"`
	Version int32              `json:"__v" bson:"__v"`
}

// DrugTestDetails holds the structure for the inner drug test structure as
// defined in the drugTests collection in mongo
type DrugTestDetails struct {
	InspectorID string             `json:"inspectorID" bson:"inspectorID"`
	TestDate    primitive.DateTime `json:"testDate" bson:"testDate"`
	TestType    DrugTestType       `json:"testType" bson:"testType"`
	Frequency   DrugTestFrequency  `json:"frequency" bson:"frequency"`
	Result      DrugTestResult     `json:"result" bson:"result"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
