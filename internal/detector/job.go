package detector

import (
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// JobArgs is the River payload that asks a worker to analyze one item.
type JobArgs struct {
	ItemID string `json:"itemId" river:"unique"`
}

func (args JobArgs) Kind() string { return "AnalyzeItemJob" }

// InsertOpts allows a single attempt: gateway calls are never retried, and a
// failed analysis is recorded on the item instead. Uniqueness by item keeps a
// resubmitted job from analyzing the same item twice.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStateCompleted,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
