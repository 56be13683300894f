package telemetry

import (
	"context"
	"sync"
	"time"

	"employee-management/backend/internal/logs"
	"employee-management/backend/internal/telemetry/domain"
)

// emitTimeout bounds one asynchronous emit.
const emitTimeout = 5 * time.Second

// inflight counts the emits started by EmitAsync that have not finished.
var inflight sync.WaitGroup

// EmitAsync emits event on its own goroutine with emitTimeout, detached from the caller's context so
// a finished request does not cancel it. Failures are logged. A nil emitter or event is a no-op.
func EmitAsync(emitter EventEmitter, event *domain.Event) {
	if emitter == nil || event == nil {
		return
	}
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil {
			logs.With("telemetry").WithError(err).WithField("event_type", event.Type).Warn("async emit failed")
		}
	}()
}

// Drain waits for in-flight EmitAsync calls to finish, or for ctx to be done. It reports whether
// every emit finished. Call it after the listeners stop and before the exporters shut down.
func Drain(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
