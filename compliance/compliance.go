package compliance

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/models"
)

// Interval lengths for each testing frequency. Quarterly uses 91 days so a
// test taken on the same calendar day each quarter never reads as overdue.
const (
	monthlyInterval    = 30 * 24 * time.Hour
	quarterlyInterval  = 91 * 24 * time.Hour
	semiAnnualInterval = 182 * 24 * time.Hour
	annualInterval     = 365 * 24 * time.Hour
)

// FrequencyInterval maps a testing frequency to the length of its compliance window.
func FrequencyInterval(f models.DrugTestFrequency) time.Duration {
	switch f {
	case models.FrequencyMonthly:
		return monthlyInterval
	case models.FrequencyQuarterly:
		return quarterlyInterval
	case models.FrequencySemiAnnual:
		return semiAnnualInterval
	default:
		return annualInterval
	}
}

// Tracker derives an inspector's drug-test compliance from their recorded
// history. All reads go through the drug test collection; the derivation
// itself is a pure function of the history and the as-of date.
type Tracker struct {
	drugTestDB databases.DrugTestDatabase
}

// NewTracker initializes a tracker backed by the given drug test database.
func NewTracker(drugTestDB databases.DrugTestDatabase) *Tracker {
	return &Tracker{drugTestDB: drugTestDB}
}

// IsCompliant reports whether the inspector satisfies the testing policy as of
// the given date. An inspector with no qualifying history is not compliant.
func (t *Tracker) IsCompliant(ctx context.Context, inspectorID string, asOf time.Time) (bool, error) {
	history, err := t.history(ctx, inspectorID)
	if err != nil {
		return false, err
	}
	return IsCompliant(history, asOf), nil
}

// RequiredTestDate returns the date the inspector's next test is due, or nil
// when no qualifying test exists to anchor a schedule.
func (t *Tracker) RequiredTestDate(ctx context.Context, inspectorID string) (*time.Time, error) {
	history, err := t.history(ctx, inspectorID)
	if err != nil {
		return nil, err
	}
	return RequiredTestDate(history), nil
}

func (t *Tracker) history(ctx context.Context, inspectorID string) ([]models.DrugTestRecord, error) {
	records, err := t.drugTestDB.Find(ctx, bson.M{"drugTest.inspectorID": inspectorID})
	if err != nil {
		return nil, models.NewTransientFault("failed to load drug test history: %v", err)
	}
	return records, nil
}

// IsCompliant evaluates the policy against an in-memory history. False when no
// qualifying test exists, when the baseline result is positive, or when asOf
// falls past the baseline's due date.
func IsCompliant(history []models.DrugTestRecord, asOf time.Time) bool {
	baseline := Baseline(history)
	if baseline == nil {
		return false
	}
	if baseline.Details.Result == models.ResultPositive {
		return false
	}
	due := baseline.Details.TestDate.Time().Add(FrequencyInterval(baseline.Details.Frequency))
	return !asOf.After(due)
}

// RequiredTestDate computes the next due date from an in-memory history.
func RequiredTestDate(history []models.DrugTestRecord) *time.Time {
	baseline := Baseline(history)
	if baseline == nil {
		return nil
	}
	due := baseline.Details.TestDate.Time().Add(FrequencyInterval(baseline.Details.Frequency))
	return &due
}

// Baseline picks the record that anchors the schedule: the most recent
// non-pending random test, falling back to the most recent non-pending
// pre-employment test. Post-incident and reasonable-suspicion tests never
// anchor a schedule.
func Baseline(history []models.DrugTestRecord) *models.DrugTestRecord {
	if r := latestOfType(history, models.TestRandom); r != nil {
		return r
	}
	return latestOfType(history, models.TestPreEmployment)
}

func latestOfType(history []models.DrugTestRecord, testType models.DrugTestType) *models.DrugTestRecord {
	var latest *models.DrugTestRecord
	for i := range history {
		r := &history[i]
		if r.Details.TestType != testType || r.Details.Result == models.ResultPending {
			continue
		}
		if latest == nil || r.Details.TestDate.Time().After(latest.Details.TestDate.Time()) {
			latest = r
		}
	}
	return latest
}
