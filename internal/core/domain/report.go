package domain

import (
	"time"

	"github.com/SscSPs/payments_engine/internal/apperrors"
)

// StreamReport summarizes one processed stream.
type StreamReport struct {
	StreamID   string                   `json:"streamID"`
	Source     string                   `json:"source"`
	StartedAt  time.Time                `json:"startedAt"`
	FinishedAt time.Time                `json:"finishedAt"`
	Records    int                      `json:"records"`
	Accepted   int                      `json:"accepted"`
	Rejected   map[apperrors.Reason]int `json:"rejected"`
}

// NewStreamReport returns an empty report for a stream.
func NewStreamReport(streamID, source string, startedAt time.Time) StreamReport {
	return StreamReport{
		StreamID:  streamID,
		Source:    source,
		StartedAt: startedAt,
		Rejected:  make(map[apperrors.Reason]int),
	}
}

// RecordRejection counts a rejected or undecodable record.
func (r *StreamReport) RecordRejection(reason apperrors.Reason) {
	r.Records++
	r.Rejected[reason]++
}

// RecordAccepted counts an applied record.
func (r *StreamReport) RecordAccepted() {
	r.Records++
	r.Accepted++
}

// TotalRejected sums rejections over every reason.
func (r StreamReport) TotalRejected() int {
	n := 0
	for _, c := range r.Rejected {
		n += c
	}
	return n
}
