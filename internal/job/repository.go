package job

import (
	"context"
	"sort"
	"sync"

	"github.com/BartekS5/csvbatch/pkg/models"
)

// Repository stores job execution records.
type Repository interface {
	Create(ctx context.Context, exec *models.JobExecution) error
	Update(ctx context.Context, exec *models.JobExecution) error
	// List returns executions of jobName, newest first. An empty jobName
	// lists every job; limit <= 0 means no limit.
	List(ctx context.Context, jobName string, limit int) ([]models.JobExecution, error)
}

// MemoryRepository keeps executions for the lifetime of the process.
type MemoryRepository struct {
	mu    sync.Mutex
	execs []models.JobExecution
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, exec *models.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.execs = append(r.execs, copyExecution(exec))
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, exec *models.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.execs {
		if r.execs[i].ID == exec.ID {
			r.execs[i] = copyExecution(exec)
			return nil
		}
	}
	r.execs = append(r.execs, copyExecution(exec))
	return nil
}

func (r *MemoryRepository) List(_ context.Context, jobName string, limit int) ([]models.JobExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.JobExecution
	for i := len(r.execs) - 1; i >= 0; i-- {
		if jobName == "" || r.execs[i].JobName == jobName {
			out = append(out, copyExecution(&r.execs[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyExecution(exec *models.JobExecution) models.JobExecution {
	c := *exec
	c.Parameters = make(models.JobParameters, len(exec.Parameters))
	for k, v := range exec.Parameters {
		c.Parameters[k] = v
	}
	c.Steps = append([]models.StepExecution(nil), exec.Steps...)
	return c
}
