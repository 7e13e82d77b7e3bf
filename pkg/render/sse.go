package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

type SSEErrCode string

const (
	InternalServiceErr SSEErrCode = "INTERNAL_SERVER_ERROR"
	ServerCloseErr     SSEErrCode = "SERVER_CLOSED"
)

type SSEErrorData struct {
	Code    SSEErrCode `json:"code"`
	Message string     `json:"message,omitempty"`
}

type SSEEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// SSEStream serializes events to a text/event-stream response from a single
// writer goroutine, with periodic heartbeats.
type SSEStream struct {
	w     io.Writer
	flush func() error

	heartbeatInterval time.Duration
	messageCh         chan SSEEvent
	isClosing         atomic.Bool

	ctx        context.Context
	shutdownFn context.CancelFunc
	stoppedCh  chan struct{}
}

const maxStreamTime = 24 * time.Hour

func NewSSEStream(ctx context.Context, w http.ResponseWriter) (*SSEStream, error) {
	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return nil, fmt.Errorf("failed to set write deadline: %w", err)
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("response does not support streaming: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, maxStreamTime)
	s := &SSEStream{
		w:                 w,
		flush:             rc.Flush,
		heartbeatInterval: 30 * time.Second,
		messageCh:         make(chan SSEEvent),
		ctx:               ctx,
		shutdownFn:        cancel,
		stoppedCh:         make(chan struct{}),
	}
	go s.loop()
	return s, nil
}

func (s *SSEStream) loop() {
	defer func() {
		_ = s.send(SSEEvent{Type: "error", Data: SSEErrorData{Code: ServerCloseErr}})
		close(s.stoppedCh)
	}()

	heartbeat := time.NewTicker(s.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-s.ctx.Done():
			slog.Debug("stream SSE request context done")
			return
		case <-heartbeat.C:
			if err := s.heartbeat(); err != nil {
				slog.Debug("failed to send heartbeat", slog.Any("error", err))
				return
			}
		case event := <-s.messageCh:
			if err := s.send(event); err != nil {
				slog.Debug("failed to send SSE event", slog.String("event", event.Type), slog.Any("error", err))
				return
			}
		}
	}
}

// Send queues an event. It returns false when the stream is gone.
func (s *SSEStream) Send(event SSEEvent) bool {
	if s.isClosing.Load() {
		slog.Debug("SSE stream is closing, ignoring event", slog.String("event", event.Type))
		return false
	}
	select {
	case s.messageCh <- event:
		return true
	case <-s.stoppedCh:
		return false
	}
}

func (s *SSEStream) SendError(data SSEErrorData) bool {
	return s.Send(SSEEvent{Type: "error", Data: data})
}

func (s *SSEStream) Close() {
	if !s.isClosing.CompareAndSwap(false, true) {
		return
	}
	s.shutdownFn()
	<-s.stoppedCh
}

func (s *SSEStream) send(e SSEEvent) error {
	if e.Type != "" {
		if _, err := io.WriteString(s.w, "event: "+e.Type+"\n"); err != nil {
			return err
		}
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	return s.flush()
}

func (s *SSEStream) heartbeat() error {
	if _, err := io.WriteString(s.w, ": heartbeat\n\n"); err != nil {
		return fmt.Errorf("failed to send heartbeat: %w", err)
	}
	return s.flush()
}
