package models

import "time"

// Job parameter keys.
const (
	ParamSourceFileURL  = "sourceFileUrl"
	ParamTargetFilePath = "targetFilePath"
	ParamRunID          = "run.id"
)

// JobParameters are the key-value inputs supplied when a job is launched.
type JobParameters map[string]string

// Status is the lifecycle status of a job or step execution.
type Status string

const (
	StatusStarted   Status = "STARTED"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// StepExecution holds the counters and outcome of one step run.
type StepExecution struct {
	StepName      string    `json:"stepName" bson:"stepName"`
	Status        Status    `json:"status" bson:"status"`
	State         string    `json:"state,omitempty" bson:"state,omitempty"`
	ReadCount     int       `json:"readCount" bson:"readCount"`
	FilterCount   int       `json:"filterCount" bson:"filterCount"`
	WriteCount    int       `json:"writeCount" bson:"writeCount"`
	CommitCount   int       `json:"commitCount" bson:"commitCount"`
	RollbackCount int       `json:"rollbackCount" bson:"rollbackCount"`
	ExitMessage   string    `json:"exitMessage,omitempty" bson:"exitMessage,omitempty"`
	StartTime     time.Time `json:"startTime" bson:"startTime"`
	EndTime       time.Time `json:"endTime,omitempty" bson:"endTime,omitempty"`
}

// JobExecution is the record of a single job launch.
type JobExecution struct {
	ID          string          `json:"id" bson:"_id"`
	JobName     string          `json:"jobName" bson:"jobName"`
	Parameters  JobParameters   `json:"parameters" bson:"parameters"`
	Status      Status          `json:"status" bson:"status"`
	ExitMessage string          `json:"exitMessage,omitempty" bson:"exitMessage,omitempty"`
	Steps       []StepExecution `json:"steps" bson:"steps"`
	StartTime   time.Time       `json:"startTime" bson:"startTime"`
	EndTime     time.Time       `json:"endTime,omitempty" bson:"endTime,omitempty"`
}
