package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"territorio/internal/client"
)

// ErrSuperseded is returned by Refresh when a newer refresh was issued
// before this one settled. The view is left to the newer refresh.
var ErrSuperseded = errors.New("refresh superseded")

// FailureKind classifies why a refresh degraded the view.
type FailureKind string

const (
	FailureNone    FailureKind = ""
	FailureRequest FailureKind = "request"
	FailureParse   FailureKind = "parse"
)

// Classify maps a fetch error to its failure kind. Anything that is not a
// ParseError counts as a request failure.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var parseErr *client.ParseError
	if errors.As(err, &parseErr) {
		return FailureParse
	}
	return FailureRequest
}

// RenderError collects the charts that failed during one refresh.
type RenderError struct {
	Failed map[Slot]error
}

func (e *RenderError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, slot := range []Slot{SlotActividades, SlotEducacion, SlotPiramide} {
		if err, ok := e.Failed[slot]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", slot, err))
		}
	}
	return "render: " + strings.Join(parts, "; ")
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
