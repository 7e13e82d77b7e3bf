package update

import (
	"context"
	"log/slog"
	"time"
)

// ScheduleStartupCheck runs CheckForUpdate once per Manager lifetime, after
// the startup delay, when the environment provides the update service and
// automatic updates are enabled. The check never fires once ctx is done or
// the returned cancel function has been called.
func (m *Manager) ScheduleStartupCheck(ctx context.Context) (cancel func()) {
	if !m.available() {
		slog.Debug("Startup update check skipped: updater not available")
		return func() {}
	}
	if !m.autoUpdateEnabled() {
		slog.Debug("Startup update check skipped: automatic updates disabled")
		return func() {}
	}
	if !m.startupCheckPerformed.CompareAndSwap(false, true) {
		slog.Debug("Startup update check already performed")
		return func() {}
	}

	ctx, cancelCtx := context.WithCancel(ctx)
	timer := time.AfterFunc(m.startupDelay, func() {
		defer cancelCtx()
		if ctx.Err() != nil {
			return
		}
		slog.Info("Running startup update check")
		m.CheckForUpdate(context.WithoutCancel(ctx))
	})
	context.AfterFunc(ctx, func() { timer.Stop() })
	return cancelCtx
}

func (m *Manager) autoUpdateEnabled() bool {
	if m.autoUpdate == nil {
		return false
	}
	enabled, err := m.autoUpdate.AutoUpdateEnabled()
	if err != nil {
		slog.Warn("Failed to read auto-update setting", slog.Any("error", err))
		return false
	}
	return enabled
}
