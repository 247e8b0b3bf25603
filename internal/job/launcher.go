// Package job runs named jobs made of sequential steps and records every
// launch in a Repository.
package job

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/BartekS5/csvbatch/pkg/logger"
	"github.com/BartekS5/csvbatch/pkg/models"
	"github.com/BartekS5/csvbatch/pkg/utils"
	"github.com/google/uuid"
)

// Step is one unit of work inside a job.
type Step interface {
	Name() string
	Execute(ctx context.Context, params models.JobParameters, exec *models.StepExecution) error
}

// Job is a named, ordered list of steps.
type Job struct {
	Name  string
	Steps []Step
	// IncrementRunID adds a run.id parameter one greater than the last
	// recorded execution of this job, so identical inputs still form a new
	// job instance.
	IncrementRunID bool
}

// Launcher runs jobs. Steps run in order; the first failing step fails the job.
type Launcher struct {
	Repo Repository

	now   func() time.Time
	newID func() string
}

func NewLauncher(repo Repository) *Launcher {
	if repo == nil {
		repo = NewMemoryRepository()
	}
	return &Launcher{
		Repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Run executes job with params. The returned execution is always non-nil;
// the error is the failing step's error, if any.
func (l *Launcher) Run(ctx context.Context, job *Job, params models.JobParameters) (*models.JobExecution, error) {
	params = utils.Merge(params, nil)
	if job.IncrementRunID {
		params[models.ParamRunID] = strconv.Itoa(l.nextRunID(ctx, job.Name))
	}

	exec := &models.JobExecution{
		ID:         l.newID(),
		JobName:    job.Name,
		Parameters: params,
		Status:     models.StatusStarted,
		StartTime:  l.now(),
	}
	if err := l.Repo.Create(ctx, exec); err != nil {
		logger.Warnf("Could not record start of job %s: %v", job.Name, err)
	}
	logger.Infof("Job: [%s] launched with the following parameters: [%s]", job.Name, utils.FormatJobParameters(params))

	var runErr error
	for _, step := range job.Steps {
		se := models.StepExecution{
			StepName:  step.Name(),
			Status:    models.StatusStarted,
			StartTime: l.now(),
		}
		logger.Infof("Executing step: [%s]", se.StepName)

		err := step.Execute(ctx, params, &se)
		se.EndTime = l.now()
		if err != nil {
			se.Status = models.StatusFailed
			se.ExitMessage = err.Error()
		} else {
			se.Status = models.StatusCompleted
		}
		exec.Steps = append(exec.Steps, se)
		logger.Infof("Step: [%s] executed in %s with status %s", se.StepName, se.EndTime.Sub(se.StartTime), se.Status)

		if err != nil {
			runErr = fmt.Errorf("job %s failed at step %s: %w", job.Name, se.StepName, err)
			exec.ExitMessage = err.Error()
			break
		}
		if se.ExitMessage != "" {
			exec.ExitMessage = se.ExitMessage
		}
	}

	exec.EndTime = l.now()
	if runErr != nil {
		exec.Status = models.StatusFailed
	} else {
		exec.Status = models.StatusCompleted
	}
	if err := l.Repo.Update(ctx, exec); err != nil {
		logger.Warnf("Could not record end of job %s: %v", job.Name, err)
	}

	logger.Infof("Job: [%s] completed with the following parameters: [%s] and the following status: [%s] in %s",
		job.Name, utils.FormatJobParameters(params), exec.Status, exec.EndTime.Sub(exec.StartTime))
	return exec, runErr
}

func (l *Launcher) nextRunID(ctx context.Context, jobName string) int {
	last, err := l.Repo.List(ctx, jobName, 1)
	if err != nil {
		logger.Warnf("Could not read last run of job %s: %v", jobName, err)
		return 1
	}
	if len(last) == 0 {
		return 1
	}
	id, err := strconv.Atoi(last[0].Parameters[models.ParamRunID])
	if err != nil {
		return 1
	}
	return id + 1
}
