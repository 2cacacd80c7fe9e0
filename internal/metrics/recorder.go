package metrics

import "time"

// ResultLabel is the result label attached to per-stage counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// ResultFor picks the label for a finished stage. Cancellation wins over failure,
// and failure over warnings.
func ResultFor(canceled, failed, warned bool) ResultLabel {
	switch {
	case canceled:
		return ResultCanceled
	case failed:
		return ResultFatal
	case warned:
		return ResultWarning
	}
	return ResultSuccess
}

// Recorder receives build and preview-server observations. The builder and the
// live reload hub call it on every build, so implementations must be cheap and
// safe for concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	// IncBuildOutcome takes the report outcome: success, warning, failed or canceled.
	IncBuildOutcome(outcome string)
	AddPagesRendered(n int)
	AddLinkIssues(kind string, n int)
	IncReloadBroadcast()
}

// NoopRecorder discards everything. Builders start with it until a recorder is set.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) AddPagesRendered(int)                       {}
func (NoopRecorder) AddLinkIssues(string, int)                  {}
func (NoopRecorder) IncReloadBroadcast()                        {}
