package entity

import (
	"docrecon/constants"
)

// JobSnapshot mirrors the service's view of a job at one point in time.
// Timestamps stay in the service's own string format; this side never does
// arithmetic on them.
type JobSnapshot struct {
	JobID        string              `json:"job_id"`
	Status       constants.JobStatus `json:"status"`
	CreatedAt    string              `json:"created_at"`
	TotalFiles   int                 `json:"total_files"`
	SystemPrompt string              `json:"system_prompt,omitempty"`
	UserPrompt   string              `json:"user_prompt,omitempty"`
	LastUpdated  string              `json:"last_updated,omitempty"`
	Error        string              `json:"error,omitempty"`
	LedgerFile   string              `json:"ledger_file,omitempty"`
	LedgerFormat string              `json:"ledger_format,omitempty"`
}

// SubmitResponse is the service's reply to a job creation request.
type SubmitResponse struct {
	JobID          string `json:"job_id"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	FilesProcessed int    `json:"files_processed"`
	CreatedAt      string `json:"created_at"`
}

// JobsList wraps the full roster as returned by GET /jobs.
type JobsList struct {
	Jobs []JobSnapshot `json:"jobs"`
}

// DeleteResponse is the service's reply to DELETE /job/{id}.
type DeleteResponse struct {
	Message string `json:"message"`
}

// APIError is the service's failure envelope.
type APIError struct {
	Detail string `json:"detail"`
}
