// Package feed implements update.Service on top of a static release feed:
// a JSON document describing the latest release and one artifact per
// platform.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	semver "go.bug.st/relaxed-semver"

	"github.com/arduino/arduino-app-updater/internal/update"
)

var ErrNoPlatform = errors.New("no release available for platform")

type Config struct {
	URL            string
	CurrentVersion string
	// Target is the executable replaced by DownloadAndInstall.
	Target string
	// Platform defaults to DefaultPlatform().
	Platform   string
	HTTPClient *http.Client
}

type Service struct {
	url            string
	currentVersion string
	target         string
	platform       string
	client         *http.Client
}

var _ update.Service = (*Service)(nil)

func New(cfg Config) *Service {
	s := &Service{
		url:            cfg.URL,
		currentVersion: cfg.CurrentVersion,
		target:         cfg.Target,
		platform:       cfg.Platform,
		client:         cfg.HTTPClient,
	}
	if s.platform == "" {
		s.platform = DefaultPlatform()
	}
	if s.client == nil {
		s.client = http.DefaultClient
	}
	return s
}

type document struct {
	Version   string              `json:"version"`
	Notes     string              `json:"notes"`
	PubDate   string              `json:"pub_date"`
	Platforms map[string]platform `json:"platforms"`
}

type platform struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Check fetches the feed and returns the release for this platform when
// its version is greater than the running one.
func (s *Service) Check(ctx context.Context) (*update.Release, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding release feed: %w", err)
	}

	latest, err := parseVersion(doc.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid feed version %q: %w", doc.Version, err)
	}
	current, err := parseVersion(s.currentVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid current version %q: %w", s.currentVersion, err)
	}
	if !latest.GreaterThan(current) {
		slog.Debug("Already up to date", slog.String("current", current.String()), slog.String("latest", latest.String()))
		return nil, nil
	}

	artifact, ok := doc.Platforms[s.platform]
	if !ok || artifact.URL == "" {
		return nil, fmt.Errorf("%w %s", ErrNoPlatform, s.platform)
	}

	release := &update.Release{
		Version:        doc.Version,
		CurrentVersion: s.currentVersion,
		Notes:          doc.Notes,
		URL:            artifact.URL,
		Size:           artifact.Size,
	}
	if doc.PubDate != "" {
		if t, err := time.Parse(time.RFC3339, doc.PubDate); err == nil {
			release.PublishedAt = t
		} else {
			slog.Warn("Ignoring invalid release date", slog.String("pub_date", doc.PubDate), slog.Any("error", err))
		}
	}
	return release, nil
}

func parseVersion(v string) (*semver.Version, error) {
	return semver.Parse(strings.TrimPrefix(strings.TrimSpace(v), "v"))
}

// DefaultPlatform returns the feed key of the running platform, e.g.
// "linux-x86_64".
func DefaultPlatform() string {
	return Platform(runtime.GOOS, runtime.GOARCH)
}

func Platform(goos, goarch string) string {
	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i686"
	case "arm":
		arch = "armv7"
	}
	return goos + "-" + arch
}

func defaultTarget() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return exe, nil
}
