package sniffer

import (
	"sync"
	"time"
)

// AnomalyLimiter caps how many warnings are logged per reason within a
// fixed window. Counts reset when the window rotates.
type AnomalyLimiter struct {
	mu          sync.Mutex
	current     map[string]int
	windowStart time.Time
	windowSize  time.Duration
	maxPerWin   int
	suppressed  int64
}

// AnomalyLimiterConfig configures warning throttling.
type AnomalyLimiterConfig struct {
	MaxPerWindow int           // Warnings per reason per window (0 = unlimited)
	Window       time.Duration // Window size (default 10s)
}

// NewAnomalyLimiter creates a limiter. Returns nil if disabled (MaxPerWindow <= 0);
// a nil limiter allows everything.
func NewAnomalyLimiter(cfg AnomalyLimiterConfig) *AnomalyLimiter {
	if cfg.MaxPerWindow <= 0 {
		return nil
	}
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Second
	}
	return &AnomalyLimiter{
		current:    make(map[string]int),
		windowSize: cfg.Window,
		maxPerWin:  cfg.MaxPerWindow,
	}
}

// Allow reports whether a warning for reason may be logged at now.
func (l *AnomalyLimiter) Allow(reason string, now time.Time) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.windowSize {
		clear(l.current)
		l.windowStart = now
	}

	l.current[reason]++
	if l.current[reason] > l.maxPerWin {
		l.suppressed++
		return false
	}
	return true
}

// Suppressed returns the total number of warnings withheld.
func (l *AnomalyLimiter) Suppressed() int64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.suppressed
}
