package update

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrOperationAlreadyInProgress = errors.New("an operation is already in progress")
	ErrServiceUnavailable         = errors.New("update service is not available in this environment")
	ErrNoUpdateAvailable          = errors.New("no update available, run a check first")
)

const (
	checkFailedMessage    = "Failed to check for updates"
	downloadFailedMessage = "Failed to download update"
	restartFailedMessage  = "Failed to restart application"
)

// Service checks for, downloads and installs application releases.
type Service interface {
	// Check returns nil, nil when no newer release exists.
	Check(ctx context.Context) (*Release, error)
	// DownloadAndInstall reports Started, zero or more Progress and Finished
	// through onEvent, in that order, before returning.
	DownloadAndInstall(ctx context.Context, r *Release, onEvent func(ProgressEvent)) error
}

// Restarter relaunches the application. Relaunch never returns on success.
type Restarter interface {
	Relaunch() error
}

type AutoUpdateSetting interface {
	AutoUpdateEnabled() (bool, error)
}

type LastCheckRecorder interface {
	SetLastUpdateCheck(time.Time) error
}

type Option func(*Manager)

func WithSettings(reader AutoUpdateSetting, writer LastCheckRecorder) Option {
	return func(m *Manager) {
		m.autoUpdate = reader
		m.lastCheck = writer
	}
}

func WithStartupDelay(d time.Duration) Option {
	return func(m *Manager) {
		m.startupDelay = d
	}
}

// WithEnvironment overrides the capability check used by the startup trigger.
func WithEnvironment(available func() bool) Option {
	return func(m *Manager) {
		m.available = available
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

type Manager struct {
	service   Service
	restarter Restarter

	autoUpdate   AutoUpdateSetting
	lastCheck    LastCheckRecorder
	startupDelay time.Duration
	available    func() bool
	now          func() time.Time

	startupCheckPerformed atomic.Bool

	mu          sync.RWMutex
	state       State
	attempt     uint64
	downloading bool
	subs        map[chan State]struct{}
}

func NewManager(service Service, restarter Restarter, opts ...Option) *Manager {
	m := &Manager{
		service:      service,
		restarter:    restarter,
		startupDelay: 5 * time.Second,
		now:          time.Now,
		state:        State{Status: StatusIdle},
		subs:         make(map[chan State]struct{}),
	}
	m.available = func() bool { return m.service != nil }
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

// CheckForUpdate queries the service and moves to available, idle or error.
// Every call restarts from checking; the result of an older call that
// completes after a newer one began is discarded. It is a no-op while a
// download is running.
func (m *Manager) CheckForUpdate(ctx context.Context) {
	if err := m.TryCheckForUpdate(ctx); err != nil {
		slog.Warn("Update check skipped", slog.Any("error", err))
	}
}

// TryCheckForUpdate is CheckForUpdate returning ErrOperationAlreadyInProgress
// instead of skipping silently. Check failures are reported in the state.
func (m *Manager) TryCheckForUpdate(ctx context.Context) error {
	attempt, ok := m.beginCheck()
	if !ok {
		return ErrOperationAlreadyInProgress
	}

	if m.service == nil {
		m.finish(attempt, failed(ErrServiceUnavailable, checkFailedMessage))
		return nil
	}

	release, err := m.service.Check(ctx)
	if err != nil {
		slog.Error("Update check failed", slog.Any("error", err))
		m.finish(attempt, failed(err, checkFailedMessage))
		return nil
	}

	m.recordLastCheck()

	if release == nil {
		slog.Info("No update available")
		m.finish(attempt, State{Status: StatusIdle})
		return nil
	}
	slog.Info("Update available", slog.String("version", release.Version), slog.String("current", release.CurrentVersion))
	m.finish(attempt, State{Status: StatusAvailable, Release: release})
	return nil
}

// DownloadAndInstall downloads and installs the release found by the last
// check. It is a no-op when no release is known or a download is already
// running.
func (m *Manager) DownloadAndInstall(ctx context.Context) {
	release, attempt, err := m.beginDownload()
	if err != nil {
		slog.Warn("Download skipped", slog.Any("error", err))
		return
	}
	m.download(ctx, release, attempt)
}

// StartDownloadAndInstall moves to downloading and runs the download in the
// background. It fails with ErrOperationAlreadyInProgress or
// ErrNoUpdateAvailable without touching the state.
func (m *Manager) StartDownloadAndInstall(ctx context.Context) error {
	release, attempt, err := m.beginDownload()
	if err != nil {
		return err
	}
	go m.download(ctx, release, attempt)
	return nil
}

func (m *Manager) beginDownload() (*Release, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.downloading {
		return nil, 0, ErrOperationAlreadyInProgress
	}
	release := m.state.Release
	if release == nil {
		return nil, 0, ErrNoUpdateAvailable
	}
	m.downloading = true
	m.attempt++
	m.state = State{Status: StatusDownloading, Release: release}
	m.broadcast()
	return release, m.attempt, nil
}

func (m *Manager) download(ctx context.Context, release *Release, attempt uint64) {
	slog.Info("Downloading update", slog.String("version", release.Version))

	var tracker progressTracker
	err := m.service.DownloadAndInstall(ctx, release, func(e ProgressEvent) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.attempt != attempt {
			return
		}
		if !tracker.apply(e) {
			return
		}
		m.state.DownloadProgress = tracker.percent
		if tracker.finished {
			m.state.Status = StatusReady
		}
		m.broadcast()
	})
	if err != nil {
		slog.Error("Update download failed", slog.Any("error", err))
		m.endDownload(attempt, failed(err, downloadFailedMessage))
		return
	}

	m.mu.RLock()
	finished := tracker.finished
	m.mu.RUnlock()
	if finished {
		m.endDownload(attempt, State{})
	} else {
		m.endDownload(attempt, State{Status: StatusReady, Release: release, DownloadProgress: 100})
	}
	slog.Info("Update installed", slog.String("version", release.Version))
}

// endDownload releases the download slot and, unless s is the zero State,
// publishes s when attempt is still current.
func (m *Manager) endDownload(attempt uint64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloading = false
	if s.Status == "" {
		return
	}
	if m.attempt != attempt {
		slog.Debug("Discarding stale update result", slog.String("status", string(s.Status)))
		return
	}
	m.state = s
	m.broadcast()
}

// Restart hands control to the Restarter. It only returns if the relaunch
// could not start, in which case the state becomes error.
func (m *Manager) Restart() {
	if m.restarter == nil {
		m.fail(errors.New("restart is not supported"), restartFailedMessage)
		return
	}
	slog.Info("Restarting application")
	if err := m.restarter.Relaunch(); err != nil {
		slog.Error("Restart failed", slog.Any("error", err))
		m.fail(err, restartFailedMessage)
	}
}

// Subscribe creates a new channel receiving every state change. The current
// state is delivered first.
func (m *Manager) Subscribe() chan State {
	ch := make(chan State, 100)
	m.mu.Lock()
	ch <- m.state.clone()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel from the list of subscribers and closes it.
func (m *Manager) Unsubscribe(ch chan State) {
	m.mu.Lock()
	if _, ok := m.subs[ch]; ok {
		delete(m.subs, ch)
		close(ch)
	}
	m.mu.Unlock()
}

func (m *Manager) beginCheck() (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.downloading {
		return 0, false
	}
	m.attempt++
	m.state = State{Status: StatusChecking}
	m.broadcast()
	return m.attempt, true
}

func (m *Manager) finish(attempt uint64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt != attempt {
		slog.Debug("Discarding stale update result", slog.String("status", string(s.Status)))
		return
	}
	m.state = s
	m.broadcast()
}

func (m *Manager) fail(err error, fallback string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempt++
	m.state = failed(err, fallback)
	m.broadcast()
}

func (m *Manager) recordLastCheck() {
	if m.lastCheck == nil {
		return
	}
	if err := m.lastCheck.SetLastUpdateCheck(m.now()); err != nil {
		slog.Warn("Failed to record last update check", slog.Any("error", err))
	}
}

// broadcast must be called with m.mu held. A subscriber that falls behind
// loses its oldest buffered states, never the latest one.
func (m *Manager) broadcast() {
	for ch := range m.subs {
		deliver(ch, m.state.clone())
	}
}

// deliver relies on being the only sender on ch.
func deliver(ch chan State, s State) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case old := <-ch:
			slog.Debug("Discarding state (channel full)", slog.String("status", string(old.Status)))
		default:
		}
	}
}

func failed(err error, fallback string) State {
	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return State{Status: StatusError, Error: msg}
}
