// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the records shared between the generation drivers,
// the history journal, and the CLI.
package types

import "time"

// Mode identifies which driver produced an outcome.
type Mode string

const (
	ModePDF Mode = "pdf"
	ModeCSV Mode = "csv"
)

// Status is the terminal state of one generation item.
type Status string

const (
	StatusGenerated      Status = "generated"
	StatusSkippedExists  Status = "skipped_exists"
	StatusSkippedInvalid Status = "skipped_invalid"
	StatusFailed         Status = "failed"
)

// IsError reports whether the status counts against the batch.
func (s Status) IsError() bool {
	return s == StatusSkippedInvalid || s == StatusFailed
}

// Outcome records what happened to a single input during a run.
type Outcome struct {
	// RunID groups the outcomes of one command invocation.
	RunID string `json:"run_id" yaml:"run_id"`

	Mode Mode `json:"mode" yaml:"mode"`

	// Input is the PDF path, or "<csv>#<row>" for CSV records.
	Input string `json:"input" yaml:"input"`

	// Output is the note path; empty when nothing was written.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	Status Status `json:"status" yaml:"status"`

	// Error holds the failure reason for invalid and failed items.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
