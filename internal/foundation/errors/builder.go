package errors

// ErrorBuilder assembles a ClassifiedError step by step:
//
//	errors.WrapError(err, errors.CategoryPublish, "push failed").
//		WithContext("remote", url).
//		Retryable().
//		Build()
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of the given category with error severity and no retry.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
	}}
}

// WrapError is NewError with cause as the wrapped error.
func WrapError(cause error, category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	b.err.cause = cause
	return b
}

// classified starts an error with the severity and retry defaults of its category.
func classified(category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	if p, ok := profileOf(category); ok {
		b.err.severity, b.err.retry = p.severity, p.retry
	}
	return b
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.err.retry = strategy
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

func (b *ErrorBuilder) WithContextMap(ctx ErrorContext) *ErrorBuilder {
	b.err.context = b.err.context.Merge(ctx)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder   { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }
func (b *ErrorBuilder) Info() *ErrorBuilder    { return b.WithSeverity(SeverityInfo) }

func (b *ErrorBuilder) Retryable() *ErrorBuilder  { return b.WithRetry(RetryBackoff) }
func (b *ErrorBuilder) Immediate() *ErrorBuilder  { return b.WithRetry(RetryImmediate) }
func (b *ErrorBuilder) RateLimit() *ErrorBuilder  { return b.WithRetry(RetryRateLimit) }
func (b *ErrorBuilder) UserAction() *ErrorBuilder { return b.WithRetry(RetryUserAction) }

// Build returns the error. Later builder calls do not affect errors already built.
func (b *ErrorBuilder) Build() *ClassifiedError {
	out := b.err
	out.context = out.context.Merge(nil)
	return &out
}

// Per-category constructors. Defaults come from the category profile.

func ConfigError(message string) *ErrorBuilder     { return classified(CategoryConfig, message) }
func ValidationError(message string) *ErrorBuilder { return classified(CategoryValidation, message) }

// NavError is for nav entries that do not resolve; these always stop a build.
func NavError(message string) *ErrorBuilder { return classified(CategoryNav, message) }

func LinksError(message string) *ErrorBuilder      { return classified(CategoryLinks, message) }
func MacrosError(message string) *ErrorBuilder     { return classified(CategoryMacros, message) }
func LintError(message string) *ErrorBuilder       { return classified(CategoryLint, message) }
func BuildError(message string) *ErrorBuilder      { return classified(CategoryBuild, message) }
func RenderError(message string) *ErrorBuilder     { return classified(CategoryRender, message) }
func FileSystemError(message string) *ErrorBuilder { return classified(CategoryFileSystem, message) }
func VersioningError(message string) *ErrorBuilder { return classified(CategoryVersioning, message) }

// PublishError defaults to backoff since pushes to a shared branch can race.
func PublishError(message string) *ErrorBuilder { return classified(CategoryPublish, message) }

func NetworkError(message string) *ErrorBuilder  { return classified(CategoryNetwork, message) }
func InternalError(message string) *ErrorBuilder { return classified(CategoryInternal, message) }
