package analyzer

import (
	"context"
	"detector/pkg/domain"
)

// Input is one uploaded file to analyze.
type Input struct {
	Content   []byte
	MediaType string
}

// Outcome is the terminal state of one analysis. Result is always populated;
// Err is set when Status is ERROR.
type Outcome struct {
	Status domain.ItemStatus
	Result domain.ProcessingResult
	Err    error
}

//go:generate mockgen -package mockanalyzer -source=interface.go -destination=mock/mockanalyzer.go *
type Analyzer interface {
	// Analyze runs the detection pipeline for in. It never panics and always
	// returns a COMPLETED or ERROR outcome.
	Analyze(ctx context.Context, in Input) Outcome
}
