package errors

import (
	stderrors "errors"
	"log/slog"
	"strings"
)

// ClassifiedError is an error tagged with a category, severity and retry strategy,
// plus optional structured context. Values are built with NewError or WrapError.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// Error renders "[category:severity] message" with ": cause" appended when wrapping.
func (e *ClassifiedError) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.category))
	b.WriteByte(':')
	b.WriteString(string(e.severity))
	b.WriteString("] ")
	b.WriteString(e.message)
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory      { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity      { return e.severity }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string              { return e.message }
func (e *ClassifiedError) Cause() error                 { return e.cause }
func (e *ClassifiedError) Context() ErrorContext        { return e.context }

// WithContext returns a copy carrying key=value. The receiver is left untouched.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	return e.withContext(ErrorContext{key: value})
}

// WithContextMap returns a copy with ctx merged over the existing context.
func (e *ClassifiedError) WithContextMap(ctx ErrorContext) *ClassifiedError {
	return e.withContext(ctx)
}

func (e *ClassifiedError) withContext(ctx ErrorContext) *ClassifiedError {
	dup := *e
	dup.context = e.context.Merge(ctx)
	return &dup
}

// Is matches another ClassifiedError with the same category and message, so
// sentinel values built once can be compared with errors.Is.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

func (e *ClassifiedError) IsCategory(category ErrorCategory) bool { return e.category == category }
func (e *ClassifiedError) IsSeverity(severity ErrorSeverity) bool { return e.severity == severity }

// CanRetry reports whether retrying without outside intervention may succeed.
func (e *ClassifiedError) CanRetry() bool {
	switch e.retry {
	case RetryImmediate, RetryBackoff, RetryRateLimit:
		return true
	}
	return false
}

func (e *ClassifiedError) IsFatal() bool { return e.severity == SeverityFatal }

// level maps the severity onto a log level.
func (e *ClassifiedError) level() slog.Level {
	switch e.severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	}
	return slog.LevelError
}

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

func HasCategory(err error, category ErrorCategory) bool {
	ce, ok := AsClassified(err)
	return ok && ce.category == category
}

func HasSeverity(err error, severity ErrorSeverity) bool {
	ce, ok := AsClassified(err)
	return ok && ce.severity == severity
}

// GetCategory returns the category of err, CategoryInternal for unclassified errors.
func GetCategory(err error) ErrorCategory {
	if ce, ok := AsClassified(err); ok {
		return ce.category
	}
	return CategoryInternal
}

// GetSeverity returns the severity of err, SeverityError for unclassified errors.
func GetSeverity(err error) ErrorSeverity {
	if ce, ok := AsClassified(err); ok {
		return ce.severity
	}
	return SeverityError
}

// GetRetryStrategy returns the retry strategy of err. Unclassified errors never retry.
func GetRetryStrategy(err error) RetryStrategy {
	if ce, ok := AsClassified(err); ok {
		return ce.retry
	}
	return RetryNever
}
