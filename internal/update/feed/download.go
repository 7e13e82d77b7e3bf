package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/arduino/arduino-app-updater/internal/fatomic"
	"github.com/arduino/arduino-app-updater/internal/update"
)

const chunkSize = 32 * 1024

// DownloadAndInstall streams the release artifact next to the target
// executable and atomically replaces it.
func (s *Service) DownloadAndInstall(ctx context.Context, r *update.Release, onEvent func(update.ProgressEvent)) error {
	target := s.target
	if target == "" {
		exe, err := defaultTarget()
		if err != nil {
			return fmt.Errorf("resolving executable: %w", err)
		}
		target = exe
	}
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", r.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = max(r.Size, 0)
	}
	onEvent(update.ProgressEvent{Kind: update.Started, TotalBytes: total})

	slog.Info("Installing update", slog.String("target", target), slog.Int64("size", total))
	err = fatomic.Replace(target, 0755, func(w io.Writer) error {
		written, err := io.CopyBuffer(w, &progressReader{r: resp.Body, onEvent: onEvent}, make([]byte, chunkSize))
		if err != nil {
			return fmt.Errorf("downloading %s: %w", r.URL, err)
		}
		if resp.ContentLength > 0 && written != resp.ContentLength {
			return fmt.Errorf("short download: got %d of %d bytes", written, resp.ContentLength)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("installing update: %w", err)
	}

	onEvent(update.ProgressEvent{Kind: update.Finished})
	return nil
}

type progressReader struct {
	r       io.Reader
	onEvent func(update.ProgressEvent)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.onEvent(update.ProgressEvent{Kind: update.Progress, ChunkBytes: int64(n)})
	}
	return n, err
}
