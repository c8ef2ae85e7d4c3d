package processor

import (
	"context"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/service"
	"shopcatalog/pkg/logger"
	"shopcatalog/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// Reconciler - полный проход по каталогу со сверкой агрегатов
type Reconciler interface {
	ReconcileAll(ctx context.Context) (service.ReconcileResult, error)
}

type cronLogger struct{}

func (cronLogger) Printf(format string, v ...interface{}) {
	logger.Printf(format, v...)
}

// CronScheduler запускает сверку агрегатов по расписанию (формат с секундами)
type CronScheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
}

func NewCronScheduler(reconciler Reconciler) *CronScheduler {
	cronLog := cron.VerbosePrintfLogger(cronLogger{})

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &CronScheduler{
		cron:       c,
		reconciler: reconciler,
	}
}

// Start регистрирует задачу, запускает cron и сразу делает первую сверку
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("Cron scheduler started")

	s.RunOnce(ctx)
	return nil
}

// RunOnce - одна сверка с логированием итога
func (s *CronScheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	result, err := s.reconciler.ReconcileAll(ctx)
	metrics.RecordRatingRecompute("reconcile", time.Since(start), err)

	if err != nil {
		logger.Error().Err(err).Int("checked", result.Checked).Msg("Rating reconciliation failed")
		return
	}

	logger.Info().
		Int("checked", result.Checked).
		Int("drifted", result.Drifted).
		Int("failed", result.Failed).
		Dur("took", time.Since(start)).
		Msg("Rating reconciliation completed")
}

func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
