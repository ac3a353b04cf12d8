package service

import (
	"log/slog"
	"time"
)

// runReaper periodically drops sessions that have been idle longer than
// Config.IdleTimeout.
func (s *Service) runReaper() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.ReaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if n := s.reapIdle(); n > 0 {
				s.logger.Debug("reaped idle sessions", slog.Int("count", n))
			}
		}
	}
}

// reapIdle drops idle sessions and returns how many were dropped.
func (s *Service) reapIdle() int {
	cutoff := s.config.Clock().Add(-s.config.IdleTimeout)

	s.mu.RLock()
	var stale []*deviceSession
	for _, d := range s.sessions {
		if d.idleSince().Before(cutoff) {
			stale = append(stale, d)
		}
	}
	s.mu.RUnlock()

	for _, d := range stale {
		s.drop(d, DropIdle)
	}
	return len(stale)
}
