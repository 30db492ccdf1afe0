package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// Code identifies the kind of registry failure.
type Code string

const (
	// Registration errors
	CodePluginAlreadyExists  Code = "PLUGIN_ALREADY_EXISTS"
	CodePluginNotFound       Code = "PLUGIN_NOT_FOUND"
	CodeRegistrationFailed   Code = "REGISTRATION_FAILED"
	CodeUnregistrationFailed Code = "UNREGISTRATION_FAILED"

	// Dependency errors
	CodeHasDependents       Code = "HAS_DEPENDENTS"
	CodeHasActiveDependents Code = "HAS_ACTIVE_DEPENDENTS"
	CodeMissingDependencies Code = "MISSING_DEPENDENCIES"
	CodeGraphBuildFailed    Code = "GRAPH_BUILD_FAILED"

	// Lifecycle errors
	CodeActivationFailed   Code = "ACTIVATION_FAILED"
	CodeActivationError    Code = "ACTIVATION_ERROR"
	CodeDeactivationFailed Code = "DEACTIVATION_FAILED"

	// Loader errors
	CodeLoadFailed   Code = "LOAD_FAILED"
	CodeLoadError    Code = "LOAD_ERROR"
	CodeUnloadFailed Code = "UNLOAD_FAILED"

	// Bulk operation errors
	CodeBulkActivationFailed   Code = "BULK_ACTIVATION_FAILED"
	CodeBulkDeactivationFailed Code = "BULK_DEACTIVATION_FAILED"
	CodeReloadAllFailed        Code = "RELOAD_ALL_FAILED"
)

// Error is a structured registry error carrying a stable code,
// a human-readable message and optional structured context.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Inner   error          `json:"-"`
	Stack   []string       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Inner)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the inner error.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is matches errors by code, so errors.Is(err, &Error{Code: ...}) works.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a single structured detail.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges multiple structured details.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithStack captures the call stack at the point of invocation.
func (e *Error) WithStack() *Error {
	e.Stack = captureStack(3) // skip this method and its caller
	return e
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around an underlying error. If err is already an
// *Error it is carried as the inner error so its code stays inspectable.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Inner: err}
}

// CodeOf extracts the registry code from err, unwrapping as needed.
// Returns "" for nil or foreign errors.
func CodeOf(err error) Code {
	e := FromError(err)
	if e == nil {
		return ""
	}
	return e.Code
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// FromError returns err as *Error if possible, unwrapping as needed.
func FromError(err error) *Error {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}

// captureStack captures the call stack as "pkg.Func (file:line)" frames.
func captureStack(skip int) []string {
	var stack []string
	for i := skip; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		funcName := fn.Name()
		if idx := strings.LastIndex(funcName, "/"); idx >= 0 {
			funcName = funcName[idx+1:]
		}
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}

		stack = append(stack, fmt.Sprintf("%s (%s:%d)", funcName, file, line))
	}
	return stack
}
