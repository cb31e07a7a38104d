package dto

import (
	"time"

	"github.com/SscSPs/payments_engine/internal/core/domain"
)

// StreamReportResponse describes one uploaded stream.
type StreamReportResponse struct {
	StreamID   string         `json:"streamID"`
	Source     string         `json:"source"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Records    int            `json:"records"`
	Accepted   int            `json:"accepted"`
	Rejected   map[string]int `json:"rejected"`
	// Error is set when the stream ended before its input was exhausted.
	Error string `json:"error,omitempty"`
}

// ToStreamReportResponse converts a report and the error that ended the
// stream, if any.
func ToStreamReportResponse(report domain.StreamReport, err error) StreamReportResponse {
	rejected := make(map[string]int, len(report.Rejected))
	for reason, n := range report.Rejected {
		rejected[string(reason)] = n
	}
	resp := StreamReportResponse{
		StreamID:   report.StreamID,
		Source:     report.Source,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Records:    report.Records,
		Accepted:   report.Accepted,
		Rejected:   rejected,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
