package audit

import "time"

type LogLevel string

const (
	LevelInfo    LogLevel = "INFO"
	LevelWarning LogLevel = "WARNING"
)

type Event struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	TargetID  string    `json:"target_id,omitempty"`
	Metadata  string    `json:"metadata,omitempty"`
}

type QueryFilters struct {
	StartTime *time.Time
	EndTime   *time.Time
	Action    string
	Resource  string
	TargetID  string
	Limit     int
}
