package debug

// Debug runtime metrics logger. Started only when config.Debug is true.
// Acquisition attempts fan out normalization workers and the session teardown
// sleeps off the UI path, so goroutine count and heap are the first things to
// check when the app feels stuck.

import (
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/dustin/go-humanize"
)

// StartRuntimeLogger launches a ticker that logs goroutine count and memory
// usage. It is lightweight; disable by running without the debug flag.
func StartRuntimeLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for range t.C {
			metrics.Read(samples)
			goroutines := samples[0].Value.Uint64()
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Info("runtime-stats",
				slog.Uint64("goroutines", goroutines),
				slog.String("heap_alloc", humanize.Bytes(ms.HeapAlloc)),
				slog.String("stack_inuse", humanize.Bytes(ms.StackInuse)),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			)
		}
	}()
}
