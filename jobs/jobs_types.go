package jobs

import "time"

// Job statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Job is the state of one upload-and-process request. Values handed out
// by the store are copies; only the store mutates its own records.
type Job struct {
	ID          string     `json:"job_id"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Message     string     `json:"message"`
	ResultFiles []string   `json:"result_files"`
	Error       string     `json:"error,omitempty"`
	FileType    string     `json:"file_type,omitempty"`
	FileDate    string     `json:"file_date,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Stats *JobStats `json:"validation_stats,omitempty"`
}

// JobStats is the summary exposed to the frontend once a run completes.
type JobStats struct {
	TotalRecords  int   `json:"total_records"`
	HeaderRecords int   `json:"header_records"`
	DetailRecords int   `json:"detail_records"`
	Queries       int64 `json:"db_queries"`
	SkippedRows   int   `json:"skipped_rows"`
}
