// Package v1handler implements the v1 HTTP API: item upload, listing,
// deletion and history export for authenticated users.
package v1handler

import (
	"context"
	"detector/internal/detector"
	"detector/pkg/logger"
	"detector/pkg/serrors"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Deps struct {
	Detector detector.Service
}

type Handler struct {
	deps Deps
	now  func() time.Time
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps, now: time.Now}
}

// Register mounts the v1 routes on mux. Every route requires a bearer token
// verified by sec.
func (h *Handler) Register(mux *http.ServeMux, sec *SecHandler) {
	mux.Handle("POST /v1/items", sec.Middleware(http.HandlerFunc(h.CreateItem)))
	mux.Handle("GET /v1/items", sec.Middleware(http.HandlerFunc(h.ListItems)))
	mux.Handle("GET /v1/items/{id}", sec.Middleware(http.HandlerFunc(h.GetItem)))
	mux.Handle("DELETE /v1/items/{id}", sec.Middleware(http.HandlerFunc(h.DeleteItem)))
	mux.Handle("GET /v1/history/export", sec.Middleware(http.HandlerFunc(h.ExportHistory)))
}

// Error is the body of every non-2xx response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorStatusCode pairs an Error body with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   Error
}

type kindStatus struct {
	kind    serrors.Kind
	status  int
	message string
}

// kindStatuses lists kinds in match order. Kinds whose message is empty never
// expose the error text.
//
//nolint: gochecknoglobals
var kindStatuses = []kindStatus{
	{serrors.ErrNotFound, http.StatusNotFound, "resource not found"},
	{serrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{serrors.ErrForbidden, http.StatusForbidden, "forbidden"},
	{serrors.ErrBadRequest, http.StatusBadRequest, "bad request"},
	{serrors.ErrUnsupportedMedia, http.StatusUnsupportedMediaType, "unsupported file type"},
	{serrors.ErrConflict, http.StatusConflict, "conflict"},
	{serrors.ErrRateLimited, http.StatusTooManyRequests, "too many requests"},
	{serrors.ErrTimeout, http.StatusGatewayTimeout, "request timed out"},
	{serrors.ErrUnavailable, http.StatusServiceUnavailable, "service unavailable"},
	{serrors.ErrUnreadableInput, http.StatusUnprocessableEntity, "the file could not be read"},
	{serrors.ErrUpstream, http.StatusBadGateway, "upstream service failed"},
}

// NewError maps err to an HTTP status and response body. Unknown errors,
// internal and configuration kinds become an opaque 500.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &ErrorStatusCode{
			StatusCode: http.StatusRequestEntityTooLarge,
			Response:   Error{Code: serrors.ErrBadRequest.Error(), Message: "request body is too large"},
		}
	}

	for _, ks := range kindStatuses {
		if !errors.Is(err, ks.kind) {
			continue
		}

		msg := ks.message
		var se *serrors.Error
		if errors.As(err, &se) && se.Message() != "" {
			msg = se.Message()
		}
		if ks.status >= http.StatusInternalServerError {
			logger.Error(ctx, "request failed", zap.Error(err))
		}

		return &ErrorStatusCode{StatusCode: ks.status, Response: Error{Code: ks.kind.Error(), Message: msg}}
	}

	logger.Error(ctx, "internal error", zap.Error(err))

	return &ErrorStatusCode{
		StatusCode: http.StatusInternalServerError,
		Response:   Error{Code: serrors.ErrInternal.Error(), Message: "internal error"},
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	writeJSON(r.Context(), w, res.StatusCode, res.Response)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn(ctx, "could not write response", zap.Error(err))
	}
}
