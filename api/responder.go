package api

import (
	"net/http"

	"github.com/leeforge/console/errors"
	"github.com/leeforge/console/json"
)

// Response is the standard API response envelope.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
	Meta  Meta   `json:"meta"`
}

// Error is the error shape inside a Response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta carries per-request metadata.
type Meta struct {
	TraceId string `json:"traceId,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	resp.Meta.TraceId = traceIDFrom(r)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func ok(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, r, http.StatusOK, Response{Data: data})
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	e := errors.FromError(err)
	if e == nil {
		writeJSON(w, r, http.StatusInternalServerError, Response{Error: &Error{
			Code:    "INTERNAL",
			Message: err.Error(),
		}})
		return
	}
	writeJSON(w, r, statusFor(e.Code), Response{Error: &Error{
		Code:    string(e.Code),
		Message: e.Message,
		Details: e.Details,
	}})
}

// statusFor maps registry error codes to HTTP statuses. Internal-failure
// codes fall through to 500.
func statusFor(code errors.Code) int {
	switch code {
	case errors.CodePluginNotFound:
		return http.StatusNotFound
	case errors.CodePluginAlreadyExists,
		errors.CodeHasDependents,
		errors.CodeHasActiveDependents:
		return http.StatusConflict
	case errors.CodeMissingDependencies:
		return http.StatusUnprocessableEntity
	case errors.CodeActivationFailed,
		errors.CodeLoadFailed,
		errors.CodeBulkActivationFailed,
		errors.CodeBulkDeactivationFailed,
		errors.CodeReloadAllFailed:
		return http.StatusFailedDependency
	default:
		return http.StatusInternalServerError
	}
}
