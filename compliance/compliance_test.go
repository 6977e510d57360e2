package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fieldserve/inspector-api/databases/mocks"
	"github.com/fieldserve/inspector-api/models"
)

func record(testType models.DrugTestType, freq models.DrugTestFrequency, result models.DrugTestResult, testDate time.Time) models.DrugTestRecord {
	return models.DrugTestRecord{
		ID: primitive.NewObjectID(),
		Details: models.DrugTestDetails{
			InspectorID: "insp-1",
			TestDate:    primitive.NewDateTimeFromTime(testDate),
			TestType:    testType,
			Frequency:   freq,
			Result:      result,
		},
	}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsCompliantNoHistory(t *testing.T) {
	assert.False(t, IsCompliant(nil, date("2024-06-01")))
}

func TestIsCompliantOnlyPendingResults(t *testing.T) {
	history := []models.DrugTestRecord{
		record(models.TestRandom, models.FrequencyQuarterly, models.ResultPending, date("2024-05-01")),
	}
	assert.False(t, IsCompliant(history, date("2024-06-01")))
}

func TestIsCompliantPositiveBaseline(t *testing.T) {
	history := []models.DrugTestRecord{
		record(models.TestRandom, models.FrequencyQuarterly, models.ResultPositive, date("2024-05-01")),
	}
	assert.False(t, IsCompliant(history, date("2024-06-01")))
}

func TestIsCompliantWithinQuarterlyWindow(t *testing.T) {
	history := []models.DrugTestRecord{
		record(models.TestRandom, models.FrequencyQuarterly, models.ResultNegative, date("2024-04-01")),
	}
	// 91 days from 2024-04-01 is 2024-07-01.
	assert.True(t, IsCompliant(history, date("2024-07-01")))
	assert.False(t, IsCompliant(history, date("2024-07-02")))
}

func TestIsCompliantFallsBackToPreEmployment(t *testing.T) {
	history := []models.DrugTestRecord{
		record(models.TestPreEmployment, models.FrequencyAnnual, models.ResultNegative, date("2024-01-15")),
		record(models.TestPostIncident, models.FrequencyAnnual, models.ResultNegative, date("2024-05-01")),
	}
	assert.True(t, IsCompliant(history, date("2024-06-01")))
	assert.False(t, IsCompliant(history, date("2025-01-16")))
}

func TestIsCompliantPostIncidentNeverAnchors(t *testing.T) {
	history := []models.DrugTestRecord{
		record(models.TestPostIncident, models.FrequencyMonthly, models.ResultNegative, date("2024-05-20")),
	}
	assert.False(t, IsCompliant(history, date("2024-06-01")))
}

func TestIsCompliantPrefersLatestRandom(t *testing.T) {
	history := []models.DrugTestRecord{
		record(models.TestRandom, models.FrequencyQuarterly, models.ResultNegative, date("2024-01-01")),
		record(models.TestRandom, models.FrequencyQuarterly, models.ResultNegative, date("2024-05-01")),
		record(models.TestPreEmployment, models.FrequencyAnnual, models.ResultNegative, date("2023-06-01")),
	}
	baseline := Baseline(history)
	assert.Equal(t, date("2024-05-01"), baseline.Details.TestDate.Time().UTC())
	assert.True(t, IsCompliant(history, date("2024-07-15")))
}

func TestIsCompliantDeterministic(t *testing.T) {
	history := []models.DrugTestRecord{
		record(models.TestRandom, models.FrequencyQuarterly, models.ResultNegative, date("2024-04-01")),
		record(models.TestPreEmployment, models.FrequencyAnnual, models.ResultNegative, date("2023-06-01")),
	}
	asOf := date("2024-06-01")
	first := IsCompliant(history, asOf)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, IsCompliant(history, asOf))
	}
}

func TestRequiredTestDate(t *testing.T) {
	history := []models.DrugTestRecord{
		record(models.TestRandom, models.FrequencySemiAnnual, models.ResultNegative, date("2024-01-01")),
	}
	due := RequiredTestDate(history)
	assert.NotNil(t, due)
	assert.Equal(t, date("2024-07-01"), due.UTC())
}

func TestRequiredTestDateNoBaseline(t *testing.T) {
	assert.Nil(t, RequiredTestDate(nil))
}

func TestFrequencyInterval(t *testing.T) {
	assert.Equal(t, 30*24*time.Hour, FrequencyInterval(models.FrequencyMonthly))
	assert.Equal(t, 91*24*time.Hour, FrequencyInterval(models.FrequencyQuarterly))
	assert.Equal(t, 182*24*time.Hour, FrequencyInterval(models.FrequencySemiAnnual))
	assert.Equal(t, 365*24*time.Hour, FrequencyInterval(models.FrequencyAnnual))
}

func TestTrackerIsCompliantLoadsHistory(t *testing.T) {
	db := mocks.NewDrugTestDatabase(t)
	history := []models.DrugTestRecord{
		record(models.TestRandom, models.FrequencyQuarterly, models.ResultNegative, date("2024-05-01")),
	}
	db.On("Find", mock.Anything, mock.Anything).Return(history, nil)

	tracker := NewTracker(db)
	ok, err := tracker.IsCompliant(context.Background(), "insp-1", date("2024-06-01"))
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestTrackerIsCompliantSurfacesTransientFault(t *testing.T) {
	db := mocks.NewDrugTestDatabase(t)
	db.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	tracker := NewTracker(db)
	_, err := tracker.IsCompliant(context.Background(), "insp-1", date("2024-06-01"))
	assert.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindTransient))
}

func TestTrackerRequiredTestDate(t *testing.T) {
	db := mocks.NewDrugTestDatabase(t)
	history := []models.DrugTestRecord{
		record(models.TestRandom, models.FrequencyMonthly, models.ResultNegative, date("2024-05-01")),
	}
	db.On("Find", mock.Anything, mock.Anything).Return(history, nil)

	tracker := NewTracker(db)
	due, err := tracker.RequiredTestDate(context.Background(), "insp-1")
	assert.NoError(t, err)
	assert.Equal(t, date("2024-05-31"), due.UTC())
}
