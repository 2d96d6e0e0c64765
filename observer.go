package ycd

import (
	"time"
)

//////////////////////////////////////////////////

// Result kinds reported to an Observer.
const (
	ResultKindJSON   = "json"
	ResultKindBinary = "binary"
)

// Observer receives job lifecycle events. Implementations must be safe for
// concurrent use; see package metrics.
type Observer interface {
	JobCreated(kind ContentKind)
	JobPolled(status Status)
	JobFinished(status Status, elapsed time.Duration)
	ResultMaterialized(kind string, items int)

	ItemStarted()
	ItemDone(err error)
}

type nopObserver struct{}

func (nopObserver) JobCreated(ContentKind) {}
func (nopObserver) JobPolled(Status) {}
func (nopObserver) JobFinished(Status, time.Duration) {}
func (nopObserver) ResultMaterialized(string, int) {}
func (nopObserver) ItemStarted() {}
func (nopObserver) ItemDone(error) {}
