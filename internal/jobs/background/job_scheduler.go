package background

import (
	"context"
	"sync"
	"time"

	"retailops/internal/services"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// JobScheduler manages recurring background jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	ruleSvc   services.RuleService
	logger    *zap.Logger
	auditHour int
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler. auditHour is the local
// hour at which the daily rule conflict audit runs.
func NewJobScheduler(ruleSvc services.RuleService, logger *zap.Logger, auditHour int) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		ruleSvc:   ruleSvc,
		logger:    logger,
		auditHour: auditHour,
		jobs:      make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	auditJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(js.auditHour), 0, 0))),
		gocron.NewTask(js.auditRuleConflicts, context.Background()),
		gocron.WithName("rule-conflict-audit"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error("failed to create rule conflict audit job", zap.Error(err))
	} else {
		js.jobs["rule-conflict-audit"] = auditJob
	}

	js.logger.Info("registered background jobs", zap.Int("count", len(js.jobs)))
}

// auditRuleConflicts surfaces subjects that carry more than one active
// rule. Such subjects fail validation with a multiple_rules error until
// an operator retires the extra rules, so the audit gives operators a
// daily heads-up instead of waiting for an order to trip over them.
func (js *JobScheduler) auditRuleConflicts(ctx context.Context) error {
	js.logger.Info("starting rule conflict audit")

	conflicts, err := js.ruleSvc.FindConflicts(ctx, time.Now())
	if err != nil {
		js.logger.Error("rule conflict audit failed", zap.Error(err))
		return err
	}

	for _, conflict := range conflicts {
		js.logger.Warn("subject has multiple active ordering rules",
			zap.String("rule_type", conflict.Type.String()),
			zap.String("subject", conflict.Subject),
			zap.Int("rule_count", conflict.RuleCount))
	}

	js.logger.Info("completed rule conflict audit", zap.Int("conflicts", len(conflicts)))
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}
	return nil
}
