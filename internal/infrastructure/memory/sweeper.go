package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/email-login-otp/internal/pkg/clock"
)

// Sweeper periodically evicts records nobody came back for.
// Expiry itself is enforced at verification time; sweeping only bounds memory.
type Sweeper struct {
	codes     *CodeStore
	cooldowns *CooldownTracker
	clock     clock.Clocker
	interval  time.Duration
	// retention keeps expired codes around long enough to still report "expired".
	retention time.Duration
	cooldown  time.Duration
}

func NewSweeper(codes *CodeStore, cooldowns *CooldownTracker, clk clock.Clocker, interval, retention, cooldown time.Duration) *Sweeper {
	return &Sweeper{
		codes:     codes,
		cooldowns: cooldowns,
		clock:     clk,
		interval:  interval,
		retention: retention,
		cooldown:  cooldown,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep performs one eviction pass.
func (s *Sweeper) Sweep() (codes, cooldowns int) {
	now := s.clock.Now()
	codes = s.codes.EvictExpired(now.Add(-s.retention))
	cooldowns = s.cooldowns.EvictIdle(now.Add(-s.cooldown))
	if codes > 0 || cooldowns > 0 {
		slog.Debug("swept login stores", "codes", codes, "cooldowns", cooldowns)
	}
	return codes, cooldowns
}
