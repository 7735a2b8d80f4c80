package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/gridpath/internal/log"
)

// DefaultFrameInterval approximates one display frame
const DefaultFrameInterval = 16 * time.Millisecond

// Animator drives playback for every session from a ticker, one tick per frame
type Animator struct {
	service  PathService
	interval time.Duration
}

// NewAnimator creates an animator ticking the service at the given interval
func NewAnimator(service PathService, interval time.Duration) *Animator {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Animator{service: service, interval: interval}
}

// Run ticks until the context is cancelled
func (a *Animator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	log.Infof("Animator started (frame interval %v)", a.interval)
	for {
		select {
		case <-ctx.Done():
			log.Infof("Animator stopped")
			return
		case <-ticker.C:
			if n := a.service.TickAll(ctx); n > 0 {
				log.Debugf("Animator emitted %d commands", n)
			}
		}
	}
}
