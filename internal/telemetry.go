package internal

import (
	"context"
	"sync"
)

// Telemetry hook layer for the document store and the remote client. By
// default the emitter is a no-op; wiring code may register a metrics-backed
// emitter (or a test stub) via RegisterTelemetryEmitter.

type telemetryEmitter func(ctx context.Context, name string, labels map[string]string, value any)

var (
	teleMu   sync.Mutex
	teleImpl telemetryEmitter = func(ctx context.Context, name string, labels map[string]string, value any) {}
)

// RegisterTelemetryEmitter registers a custom emitter function. Passing nil
// restores the no-op emitter.
func RegisterTelemetryEmitter(fn telemetryEmitter) {
	teleMu.Lock()
	defer teleMu.Unlock()
	if fn == nil {
		teleImpl = func(ctx context.Context, name string, labels map[string]string, value any) {}
		return
	}
	teleImpl = fn
}

func emit(ctx context.Context, name string, labels map[string]string, value any) {
	teleMu.Lock()
	fn := teleImpl
	teleMu.Unlock()
	fn(ctx, name, labels, value)
}

// EmitRemoteLatency records the duration in milliseconds of one remote call.
// name: "formwave_remote_latency_ms" with labels {"operation", "outcome": "ok"|"error"}
func EmitRemoteLatency(ctx context.Context, operation string, ms int64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	emit(ctx, "formwave_remote_latency_ms", map[string]string{"operation": operation, "outcome": outcome}, ms)
}

// EmitLoadFallback counts LoadForm calls served from the local cache.
// name: "formwave_load_fallback" with label {"found": "true"|"false"}
func EmitLoadFallback(ctx context.Context, found bool) {
	label := "false"
	if found {
		label = "true"
	}
	emit(ctx, "formwave_load_fallback", map[string]string{"found": label}, int64(1))
}

// EmitStaleSave counts save responses discarded because a later save committed first.
// name: "formwave_stale_save_discarded"
func EmitStaleSave(ctx context.Context) {
	emit(ctx, "formwave_stale_save_discarded", map[string]string{}, int64(1))
}
