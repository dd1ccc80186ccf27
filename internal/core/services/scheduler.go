package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/core/ports/driven"
	"github.com/custodia-labs/wikistats/internal/core/ports/driving"
	"github.com/custodia-labs/wikistats/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// schedulerTick is how often the scheduler looks for due tasks.
const schedulerTick = time.Minute

// historyRetention is the number of results kept per task.
const historyRetention = 100

// Scheduler runs statistics passes on an interval or cron schedule.
// Task state lives in the store so a restart neither skips nor repeats a pass.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	stats  driving.StatsService
	clock  quartz.Clock

	mu       sync.Mutex
	running  bool
	inFlight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler. A nil clock uses the wall clock.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	stats driving.StatsService,
	clock quartz.Clock,
) *Scheduler {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Scheduler{
		config:   config,
		store:    store,
		stats:    stats,
		clock:    clock,
		inFlight: make(map[string]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if !s.config.Enabled {
		logger.Info("scheduler disabled")
	}
	if err := s.initialiseTasks(ctx); err != nil {
		return fmt.Errorf("initialise tasks: %w", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler, waiting for a running pass.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	taskCfg := s.config.GetTaskConfig(domain.TaskIDStatsSync)
	taskCfg.Enabled = taskCfg.Enabled && s.config.Enabled
	return s.ensureTask(ctx, domain.TaskIDStatsSync, "Statistics Update", taskCfg)
}

// ensureTask creates or updates a task in the store. The next run is
// recalculated when the schedule changed.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Cron:     cfg.Cron,
			Enabled:  cfg.Enabled,
		}
		if task.NextRun, err = nextRun(task, now); err != nil {
			return err
		}
	} else {
		if task.Interval != cfg.Interval || task.Cron != cfg.Cron {
			task.Interval = cfg.Interval
			task.Cron = cfg.Cron
			if task.NextRun, err = nextRun(task, now); err != nil {
				return err
			}
		}
		task.Enabled = cfg.Enabled
	}

	logger.Info("scheduler: %s next run at %s", task.ID, task.NextRun.Format(time.RFC3339))
	return s.store.SaveTask(ctx, task)
}

// nextRun returns when a task is due after from.
func nextRun(task *domain.ScheduledTask, from time.Time) (time.Time, error) {
	if task.Cron != "" {
		schedule, err := cron.ParseStandard(task.Cron)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cron %q: %w", task.Cron, err)
		}
		return schedule.Next(from), nil
	}
	if task.Interval <= 0 {
		return time.Time{}, fmt.Errorf("%w: task %s has no interval", domain.ErrInvalidInput, task.ID)
	}
	return from.Add(task.Interval), nil
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := s.clock.NewTicker(schedulerTick, "scheduler")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := s.clock.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task in the background. A task still running
// from an earlier tick is not started again.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.inFlight[task.ID] {
		s.mu.Unlock()
		logger.Debug("scheduler: %s still running, skipping tick", task.ID)
		return
	}
	s.inFlight[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, task.ID)
			s.mu.Unlock()
		}()

		if task.ID != domain.TaskIDStatsSync {
			logger.Warn("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: s.clock.Now(),
		}
		if !s.claim(ctx, task, result.StartedAt) {
			return
		}

		var err error
		result.RunID, result.ItemsProcessed, err = s.runStatsSync(ctx)

		result.EndedAt = s.clock.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
			logger.Error("scheduler: %s failed: %v", task.ID, err)
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(ctx, historyRetention); pruneErr != nil {
			logger.Warn("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// claim persists the run start and the following due time before the pass
// begins, so a process that dies mid-pass does not post again on restart.
// The pass is skipped when the claim cannot be stored.
func (s *Scheduler) claim(ctx context.Context, task *domain.ScheduledTask, started time.Time) bool {
	next, err := nextRun(task, started)
	if err != nil {
		logger.Warn("scheduler: %v", err)
		task.Enabled = false
	}
	task.LastRun = started
	task.NextRun = next

	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Error("scheduler: cannot record start of %s, skipping run: %v", task.ID, err)
		return false
	}
	return true
}

// runStatsSync performs one statistics pass.
func (s *Scheduler) runStatsSync(ctx context.Context) (string, int, error) {
	if s.stats == nil {
		return "", 0, nil
	}
	result, err := s.stats.Run(ctx, driving.RunOptions{})
	if err != nil {
		return "", 0, err
	}
	return result.Record.ID, result.Record.RowsAdded, nil
}
