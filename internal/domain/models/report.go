package models

import "time"

// RunStatus is the terminal state of one synchronization run.
type RunStatus string

const (
	RunUpdated RunStatus = "updated"
	RunNoop    RunStatus = "noop"
	RunFailed  RunStatus = "failed"
)

// RunReport summarizes one synchronization run. It is logged, returned to
// callers and optionally archived in MongoDB.
type RunReport struct {
	StartedAt     time.Time `bson:"started_at" json:"started_at"`
	FinishedAt    time.Time `bson:"finished_at" json:"finished_at"`
	Status        RunStatus `bson:"status" json:"status"`
	RemoteDates   int       `bson:"remote_dates" json:"remote_dates"`
	LowWaterMark  string    `bson:"low_water_mark,omitempty" json:"low_water_mark,omitempty"`
	SelectedDates []string  `bson:"selected_dates" json:"selected_dates"`
	FetchedDates  []string  `bson:"fetched_dates" json:"fetched_dates"`
	SkippedDates  []string  `bson:"skipped_dates" json:"skipped_dates"`
	NewRecords    int       `bson:"new_records" json:"new_records"`
	TotalRecords  int       `bson:"total_records" json:"total_records"`
	Published     bool      `bson:"published" json:"published"`
	Error         string    `bson:"error,omitempty" json:"error,omitempty"`
}
