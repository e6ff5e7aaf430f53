// Package comments adds staff comments to filings and keeps a local
// audit trail of what was posted to the registry.
package comments

import "time"

// Record is one audit row for a staff comment posted to the registry.
type Record struct {
	ID          string
	BusinessID  string
	FilingID    int64
	Text        string
	SubmitterID string
	CreatedAt   time.Time
}

// Posted is the registry's echo of a created comment.
type Posted struct {
	Comment              string `json:"comment"`
	SubmitterDisplayName string `json:"submitterDisplayName,omitempty"`
	Timestamp            string `json:"timestamp"`
}
