package httprecover

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/arduino/arduino-app-updater/internal/api/models"
	"github.com/arduino/arduino-app-updater/pkg/render"
)

// RecoverPanic turns a handler panic into a 500 JSON error. http.ErrAbortHandler
// is re-raised so the server can abort the response.
func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("handler panic",
				slog.Any("err", rec),
				slog.String("stacktrace", string(debug.Stack())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			render.EncodeResponse(w, http.StatusInternalServerError, models.ErrorResponse{Details: "internal server error"})
		}()
		next.ServeHTTP(w, r)
	})
}
