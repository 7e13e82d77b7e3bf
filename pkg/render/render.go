package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const maxRequestBody = 1 << 20

func EncodeResponse(w http.ResponseWriter, statusCode int, resp any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(statusCode)
	// 204 does not allow a body.
	if resp == nil || statusCode == http.StatusNoContent {
		return
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("encode response", slog.Any("err", err))
	}
}

// DecodeRequest reads a JSON body into v, rejecting unknown fields and
// trailing data.
func DecodeRequest(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("body cannot be empty")
		}
		return fmt.Errorf("invalid body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid body: unexpected data after JSON object")
	}
	return nil
}
