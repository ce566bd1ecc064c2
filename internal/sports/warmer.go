package sports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Warmer refreshes cached competition listings on a cron schedule
type Warmer struct {
	cron    *cron.Cron
	service *Service
	timeout time.Duration
	logger  *slog.Logger
}

// NewWarmer schedules service.Warm with a standard five-field cron spec
func NewWarmer(service *Service, schedule string, logger *slog.Logger) (*Warmer, error) {
	w := &Warmer{
		cron:    cron.New(),
		service: service,
		timeout: time.Minute,
		logger:  logger,
	}

	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}
	return w, nil
}

func (w *Warmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	w.service.Warm(ctx)
	w.logger.Info("Sports cache warmed", "duration", time.Since(start))
}

// Start warms once in the background, then follows the schedule
func (w *Warmer) Start() {
	go w.run()
	w.cron.Start()
}

// Stop halts the schedule and waits for a running warm to finish or ctx to end
func (w *Warmer) Stop(ctx context.Context) {
	select {
	case <-w.cron.Stop().Done():
	case <-ctx.Done():
	}
}
