package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/compliance"
	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/lifecycle"
	"github.com/fieldserve/inspector-api/models"
)

const (
	sweepJobName = "compliance_sweep_job"
	sweepLockTTL = 10 * time.Minute

	// reminderWindow is how far ahead of the due date the sweep starts
	// nudging inspectors.
	reminderWindow = 14 * 24 * time.Hour
)

// Scheduler runs the periodic drug test compliance sweep. A mongo-backed lock
// keeps the job on exactly one instance when several are deployed.
type Scheduler struct {
	cron        *cron.Cron
	InspectorDB databases.InspectorDatabase
	Tracker     *compliance.Tracker
	LockDB      databases.SchedulerLockDatabase
	Notifier    lifecycle.Notifier
	instanceID  string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	inspectorDB databases.InspectorDatabase,
	tracker *compliance.Tracker,
	lockDB databases.SchedulerLockDatabase,
	notifier lifecycle.Notifier,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		InspectorDB: inspectorDB,
		Tracker:     tracker,
		LockDB:      lockDB,
		Notifier:    notifier,
		instanceID:  instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Sweep the working population daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.RunComplianceSweep)
	if err != nil {
		zap.S().Errorw("failed to register compliance sweep job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Compliance scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Compliance scheduler stopped")
}

// RunComplianceSweep walks every active or mobilized inspector, reminds the
// ones whose next test is coming due, and flags mobilized inspectors who have
// already lapsed. Reminders are best-effort; a send failure never stops the
// sweep.
func (s *Scheduler) RunComplianceSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, sweepJobName, s.instanceID, sweepLockTTL)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for compliance sweep", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Compliance sweep already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, sweepJobName, s.instanceID)

	now := time.Now().UTC()
	zap.S().Infow("Running compliance sweep", "instance", s.instanceID)

	inspectors, err := s.InspectorDB.Find(ctx, bson.M{
		"inspector.status": bson.M{"$in": []models.InspectorStatus{
			models.StatusActive, models.StatusMobilized,
		}},
	})
	if err != nil {
		zap.S().Errorw("failed to list working inspectors", "error", err)
		return
	}

	reminded, lapsed := 0, 0
	for _, inspector := range inspectors {
		if s.sweepInspector(ctx, inspector, now) {
			reminded++
		}
		compliant, err := s.Tracker.IsCompliant(ctx, inspector.Details.InspectorID, now)
		if err != nil {
			zap.S().Errorw("compliance check failed during sweep",
				"inspectorID", inspector.Details.InspectorID, "error", err)
			continue
		}
		if !compliant && inspector.Details.Status == models.StatusMobilized {
			// A lapsed mobilized inspector needs operator attention; the
			// sweep surfaces it but never demobilizes on its own.
			zap.S().Warnw("mobilized inspector out of drug test compliance",
				"inspectorID", inspector.Details.InspectorID,
				"project", inspector.Details.CurrentProject)
			lapsed++
		}
	}

	zap.S().Infow("Compliance sweep finished",
		"inspectors", len(inspectors), "reminded", reminded, "lapsedMobilized", lapsed)
}

// sweepInspector sends a reminder when the inspector's next test falls inside
// the reminder window. Returns true when a reminder went out.
func (s *Scheduler) sweepInspector(ctx context.Context, inspector models.Inspector, now time.Time) bool {
	due, err := s.Tracker.RequiredTestDate(ctx, inspector.Details.InspectorID)
	if err != nil {
		zap.S().Errorw("failed to compute required test date",
			"inspectorID", inspector.Details.InspectorID, "error", err)
		return false
	}
	if due == nil {
		// No qualifying history to anchor a schedule; the hiring flow owns
		// the pre-employment test, not the sweep.
		return false
	}
	if due.Before(now) || due.After(now.Add(reminderWindow)) {
		return false
	}

	err = s.Notifier.SendComplianceReminder(ctx,
		inspector.Details.Email, inspector.Details.FullName(), *due)
	if err != nil {
		zap.S().Warnw("failed to send compliance reminder",
			"inspectorID", inspector.Details.InspectorID, "error", err)
		return false
	}
	return true
}
