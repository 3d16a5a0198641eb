package constants

// JobStatus is the canonical lifecycle status reported by the processing service.
type JobStatus string

// Stable values (the service sends these exact strings).
const (
	JobStatusPending    JobStatus = "pending"    // accepted, waiting for a worker
	JobStatusProcessing JobStatus = "processing" // OCR + analysis in progress
	JobStatusCompleted  JobStatus = "completed"  // terminal: results available
	JobStatusFailed     JobStatus = "failed"     // terminal failure
)

// IsTerminal reports whether no further automatic transitions can occur.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
