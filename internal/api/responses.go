package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every handler.
var validate = validator.New()

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

type ctxKey string

const traceIDKey ctxKey = "traceID"

func contextWithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

// TraceID returns the request's trace id, or "".
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("api: encoding response: %v", err)
	}
}

// respondError sends a safe message to the client. The detailed error, if
// any, only goes to the log.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	traceID := TraceID(r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		h.log.Error("api: %s %s [%s]: %s: %v", r.Method, r.URL.Path, traceID, message, err)
	default:
		h.log.Debug("api: %s %s [%s]: %d %s", r.Method, r.URL.Path, traceID, status, message)
	}
	h.respondJSON(w, status, ErrorResponse{Error: message, TraceID: traceID})
}

// decodeAndValidate reads a JSON body into v and checks its validate tags.
func decodeAndValidate(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return validate.Struct(v)
}

// blank reports whether s has no visible characters.
func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
