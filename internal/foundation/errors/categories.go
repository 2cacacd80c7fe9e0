package errors

import (
	"maps"
	"net/http"
)

// ErrorCategory names the part of a docs pipeline an error came from. The CLI maps
// categories onto exit codes and the preview server onto HTTP statuses.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNav        ErrorCategory = "nav"
	CategoryLinks      ErrorCategory = "links"
	CategoryMacros     ErrorCategory = "macros"
	CategoryLint       ErrorCategory = "lint"
	CategoryBuild      ErrorCategory = "build"
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryVersioning ErrorCategory = "versioning"
	CategoryPublish    ErrorCategory = "publish"
	CategoryNetwork    ErrorCategory = "network"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity is how far an error reaches: fatal aborts the command, error fails
// the current operation, warning and info are reported and the run continues.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy tells callers such as the publisher's push loop whether trying
// again can help.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryImmediate  RetryStrategy = "immediate"
	RetryBackoff    RetryStrategy = "backoff"
	RetryRateLimit  RetryStrategy = "rate_limit"
	RetryUserAction RetryStrategy = "user" // the docs or config need editing first
)

// profile holds the defaults and outward mappings of one category.
type profile struct {
	severity ErrorSeverity
	retry    RetryStrategy
	exit     int
	status   int
}

var profiles = map[ErrorCategory]profile{
	CategoryConfig:     {SeverityFatal, RetryNever, ExitConfig, http.StatusBadRequest},
	CategoryValidation: {SeverityFatal, RetryNever, ExitValidation, http.StatusBadRequest},
	CategoryLint:       {SeverityError, RetryUserAction, ExitLint, http.StatusBadRequest},
	CategoryNav:        {SeverityFatal, RetryUserAction, ExitNav, http.StatusUnprocessableEntity},
	CategoryLinks:      {SeverityError, RetryUserAction, ExitLinks, http.StatusUnprocessableEntity},
	CategoryMacros:     {SeverityFatal, RetryUserAction, ExitBuild, http.StatusUnprocessableEntity},
	CategoryBuild:      {SeverityFatal, RetryNever, ExitBuild, http.StatusUnprocessableEntity},
	CategoryRender:     {SeverityFatal, RetryNever, ExitBuild, http.StatusUnprocessableEntity},
	CategoryFileSystem: {SeverityError, RetryBackoff, ExitBuild, http.StatusInternalServerError},
	CategoryVersioning: {SeverityError, RetryUserAction, ExitPublish, http.StatusConflict},
	CategoryPublish:    {SeverityError, RetryBackoff, ExitPublish, http.StatusBadGateway},
	CategoryNetwork:    {SeverityError, RetryBackoff, ExitNetwork, http.StatusBadGateway},
	CategoryInternal:   {SeverityFatal, RetryNever, ExitInternal, http.StatusInternalServerError},
}

func profileOf(c ErrorCategory) (profile, bool) {
	p, ok := profiles[c]
	return p, ok
}

// ErrorContext is the structured detail attached to an error, for example the
// missing nav paths or the redirect chain that looped.
type ErrorContext map[string]any

// Set stores value under key, allocating the map when needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = ErrorContext{}
	}
	c[key] = value
	return c
}

func (c ErrorContext) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// GetString is Get restricted to string values.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// Merge returns a new context holding both, other winning on shared keys.
// Neither receiver nor argument is modified.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	out := make(ErrorContext, len(c)+len(other))
	maps.Copy(out, c)
	maps.Copy(out, other)
	return out
}
