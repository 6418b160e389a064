package model

import "time"

// JobStatus is the lifecycle state of a scan job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobError     JobStatus = "error"
)

// Job is one asynchronous execution of a scan.
// Output holds the report text once completed, or the failure description
// when Status is JobError.
type Job struct {
	ID        string     `json:"job_id"`
	Status    JobStatus  `json:"status"`
	Output    string     `json:"output"`
	Verdict   Verdict    `json:"verdict,omitempty"`
	Config    ScanConfig `json:"config"`
	Progress  Progress   `json:"progress"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RedactedWebhook replaces a configured webhook URL in job views.
const RedactedWebhook = "[redacted]"

// Redacted returns a copy of j safe to hand to API clients. The webhook URL
// carries its own credentials, so only its presence is shown.
func (j Job) Redacted() Job {
	if j.Config.WebhookURL != "" {
		j.Config.WebhookURL = RedactedWebhook
	}
	return j
}
