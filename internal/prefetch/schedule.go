package prefetch

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs a Prefetcher on a cron schedule. Runs never overlap.
type Scheduler struct {
	cron   *cron.Cron
	cancel context.CancelFunc
	logger *zap.Logger
}

func NewScheduler(ctx context.Context, spec string, p *Prefetcher) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))

	s := &Scheduler{cron: c, cancel: cancel, logger: p.logger}
	_, err := c.AddFunc(spec, func() {
		stats, err := p.Run(ctx, nil)
		if err != nil {
			s.logger.Error("scheduled prefetch stopped", zap.Error(err), zap.Int("done", stats.Total()))
		}
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("schedule prefetch %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("prefetch scheduled")
}

// Stop cancels a running prefetch and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
