package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Task одна фоновая задача
type Task func(ctx context.Context) error

// Scheduler запускает фоновые задачи по cron расписанию
// Запуск задачи пропускается, если предыдущий ещё не завершился
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	metrics Metrics
	logger  Logger
}

// NewScheduler создает планировщик; timeout ограничивает один запуск задачи
func NewScheduler(timeout time.Duration, metrics Metrics, logger Logger) *Scheduler {
	cronLogger := &cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Add регистрирует задачу; schedule - стандартное cron выражение или дескриптор вида "@every 1m"
func (s *Scheduler) Add(name, schedule string, task Task) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.Run(name, task) }); err != nil {
		return fmt.Errorf("jobs: invalid schedule %q for %s: %w", schedule, name, err)
	}
	s.logger.Info("Scheduler: job %s scheduled with %q", name, schedule)
	return nil
}

// Run выполняет задачу один раз и учитывает результат в метриках
func (s *Scheduler) Run(name string, task Task) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	if err := task(ctx); err != nil {
		s.metrics.IncJobRun(name, resultError)
		s.logger.Error("Scheduler: job %s failed after %s: %v", name, time.Since(started), err)
		return
	}
	s.metrics.IncJobRun(name, resultSuccess)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop отменяет контекст задач и ждёт завершения текущих запусков
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop().Done()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger адаптер Logger под интерфейс cron.Logger
type cronLogger struct {
	logger Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info("Scheduler: %s %v", msg, keysAndValues)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("Scheduler: %s: %v %v", msg, err, keysAndValues)
}
