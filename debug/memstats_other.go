//go:build !unix && !windows

package debug

import (
	"log/slog"
	"time"
)

// StartMemLogger logs heap stats every interval. RSS is not available on
// this platform and is reported as zero.
func StartMemLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			logMem(logger, 0)
		}
	}()
}
