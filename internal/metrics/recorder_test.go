package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObserveStageDuration("render", time.Millisecond)
		r.ObserveBuildDuration(time.Second)
		r.IncStageResult("render", ResultWarning)
		r.IncBuildOutcome("warning")
		r.AddPagesRendered(4)
		r.AddLinkIssues("anchor", 1)
		r.IncReloadBroadcast()
	})
}

var _ Recorder = (*PrometheusRecorder)(nil)

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(false, false, false))
	assert.Equal(t, ResultWarning, ResultFor(false, false, true))
	assert.Equal(t, ResultFatal, ResultFor(false, true, true))
	assert.Equal(t, ResultCanceled, ResultFor(true, true, false))
}
