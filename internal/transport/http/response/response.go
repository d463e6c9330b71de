package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/eleven-am/eventhub/internal/logger"
	"github.com/eleven-am/eventhub/internal/orm"
	"github.com/eleven-am/eventhub/internal/service"
)

type ErrorBody struct {
	Error     ErrorPayload `json:"error"`
	RequestID string       `json:"request_id,omitempty"`
}

type ErrorPayload struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// JSON writes v with the given status code
func JSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes the error envelope
func Fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	JSON(w, status, ErrorBody{
		Error:     ErrorPayload{Code: code, Message: message, Meta: meta},
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// Err maps err to a status and error code. Errors of unknown kind are logged
// and reported as internal errors without detail.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log := logger.HTTP()
		log.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("unhandled error")
		Fail(w, r, status, code, "internal error", nil)
		return
	}

	message := err.Error()
	meta := map[string]string{}

	var oe *orm.Error
	if errors.As(err, &oe) {
		if oe.Detail != "" {
			message = oe.Detail
		} else if oe.Err != nil {
			message = oe.Err.Error()
		}
		if oe.Field != "" {
			meta["field"] = oe.Field
		}
		if oe.Constraint != "" {
			meta["constraint"] = oe.Constraint
		}
		if oe.Table != "" {
			meta["resource"] = oe.Table
		}
	}
	if status == http.StatusServiceUnavailable {
		message = "storage temporarily unavailable"
		meta = nil
	}
	if len(meta) == 0 {
		meta = nil
	}

	Fail(w, r, status, code, message, meta)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, orm.ErrSchema):
		return http.StatusBadRequest, "schema_error"
	case errors.Is(err, orm.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, orm.ErrDuplicated):
		return http.StatusConflict, "duplicated"
	case errors.Is(err, orm.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, orm.ErrForeignKey), errors.Is(err, orm.ErrNotNull), errors.Is(err, orm.ErrCheck):
		return http.StatusConflict, "constraint_violation"
	case errors.Is(err, orm.ErrTransient), errors.Is(err, orm.ErrCanceled):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrInactiveAccount):
		return http.StatusForbidden, "inactive_account"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
