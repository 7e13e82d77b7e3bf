package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jub0bs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/internal/daemonclient"
	"github.com/arduino/arduino-app-updater/cmd/arduino-app-updater/internal/servicelocator"
	"github.com/arduino/arduino-app-updater/cmd/feedback"
	"github.com/arduino/arduino-app-updater/internal/api"
	"github.com/arduino/arduino-app-updater/internal/httprecover"
)

func NewDaemonCmd(version string) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run an HTTP server exposing the updater through a REST API",
		Run: func(cmd *cobra.Command, args []string) {
			daemonPort, _ := cmd.Flags().GetString("port")

			updater := servicelocator.GetUpdateManager()
			cancelStartupCheck := updater.ScheduleStartupCheck(cmd.Context())
			defer cancelStartupCheck()

			if err := httpHandler(cmd.Context(), daemonPort, version); err != nil {
				feedback.FatalError(err, feedback.ErrGeneric)
			}
		},
	}
	daemonCmd.Flags().String("port", daemonclient.DefaultPort, "The TCP port the daemon will listen to")
	return daemonCmd
}

func newCORSMiddleware() (*cors.Middleware, error) {
	return cors.NewMiddleware(
		cors.Config{
			Origins: []string{
				"wails://wails",
				"wails://wails.localhost:34115",
				"http://wails.localhost:34115",
				"http://localhost:*", "https://localhost:*",
			},
			Methods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodOptions,
			},
			RequestHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
			},
			MaxAgeInSeconds: 86400,
			ResponseHeaders: []string{},
		},
	)
}

func newHandler(version string) (http.Handler, error) {
	apiSrv := api.NewHTTPRouter(
		version,
		servicelocator.GetUpdateManager(),
		servicelocator.GetSettingsStore(),
	)
	corsMiddleware, err := newCORSMiddleware()
	if err != nil {
		return nil, fmt.Errorf("invalid CORS configuration: %w", err)
	}
	return httprecover.RecoverPanic(corsMiddleware.Wrap(apiSrv)), nil
}

func httpHandler(ctx context.Context, daemonPort, version string) error {
	handler, err := newHandler(version)
	if err != nil {
		return err
	}

	address := "127.0.0.1:" + daemonPort
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", address, err)
	}
	slog.Info("Starting HTTP server", slog.String("address", listener.Addr().String()))

	httpSrv := http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down HTTP server", slog.String("address", address))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP server: %w", err)
		}
		slog.Info("HTTP server shut down", slog.String("address", address))
		return nil
	})
	return g.Wait()
}
