package metrics

import (
	"testing"
	"time"
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveJobDuration(time.Second)
	r.ObserveScriptDuration("s", time.Second)
	r.IncScriptResult("s", ResultSkipped)
	r.IncJobOutcome(OutcomeSkipped)
	r.AddPausesInserted("s", "legacy", 1)
}
