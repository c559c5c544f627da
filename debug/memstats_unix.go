//go:build unix

package debug

// Peak resident set size reported through getrusage.

import (
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// StartMemLogger logs heap stats and peak RSS every interval. A failing
// getrusage call is logged once.
func StartMemLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for range ticker.C {
			var ru unix.Rusage
			rss := uint64(0)
			if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err == nil {
				rss = uint64(ru.Maxrss)
				// darwin reports bytes, everything else kilobytes
				if runtime.GOOS != "darwin" {
					rss *= 1024
				}
			} else if !rssErrLogged {
				logger.Warn("memlog: getrusage failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logMem(logger, rss)
		}
	}()
}
