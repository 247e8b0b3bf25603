package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/BartekS5/csvbatch/pkg/logger"
	"github.com/BartekS5/csvbatch/pkg/models"
)

// DefaultChunkSize is the number of written rows committed per transaction.
const DefaultChunkSize = 10

// State is the position of a load run in its lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateReading
	StateWriting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateReading:
		return "Reading"
	case StateWriting:
		return "Writing"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Pipeline reads rows, filters and projects them, then writes them to the
// Writer in batches of ChunkSize. A Pipeline runs once; it is not restartable.
type Pipeline struct {
	Processor Processor
	Writer    Writer
	ChunkSize int
	DryRun    bool

	state State
}

func NewPipeline(processor Processor, writer Writer, chunkSize int, dryRun bool) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Pipeline{
		Processor: processor,
		Writer:    writer,
		ChunkSize: chunkSize,
		DryRun:    dryRun,
	}
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	return p.state
}

// Run drains r. Batches written before a failure stay committed; the batch
// in flight is rolled back by the Writer. exec receives the counters.
func (p *Pipeline) Run(ctx context.Context, r Reader, exec *models.StepExecution) (err error) {
	if p.state != StateNotStarted {
		return fmt.Errorf("pipeline already ran (state %s)", p.state)
	}
	defer func() {
		if err != nil {
			p.state = StateFailed
		} else {
			p.state = StateCompleted
		}
		exec.State = p.state.String()
	}()

	logger.Infof("Starting pipeline. Chunk Size: %d, DryRun: %v", p.ChunkSize, p.DryRun)
	startTime := time.Now()
	p.state = StateReading

	batch := make([]models.PersonDB, 0, p.ChunkSize)
	for {
		item, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Errorf("Reading failed after %d items: %v", exec.ReadCount, err)
			return err
		}
		exec.ReadCount++

		out, keep := p.Processor.Process(item)
		if !keep {
			exec.FilterCount++
			continue
		}

		batch = append(batch, out)
		if len(batch) < p.ChunkSize {
			continue
		}
		if err := p.flush(ctx, batch, exec, startTime); err != nil {
			return err
		}
		batch = batch[:0]
	}

	if len(batch) > 0 {
		if err := p.flush(ctx, batch, exec, startTime); err != nil {
			return err
		}
	}

	logger.Infof("No more data to process. Read %d, filtered %d, wrote %d in %d commits.",
		exec.ReadCount, exec.FilterCount, exec.WriteCount, exec.CommitCount)
	return nil
}

func (p *Pipeline) flush(ctx context.Context, batch []models.PersonDB, exec *models.StepExecution, startTime time.Time) error {
	p.state = StateWriting

	if p.DryRun {
		logger.Infof("[DRY RUN] Would write %d records", len(batch))
	} else if err := p.Writer.Write(ctx, batch); err != nil {
		exec.RollbackCount++
		logger.Errorf("Writing failed for batch %d: %v", exec.CommitCount+1, err)
		return err
	}

	exec.WriteCount += len(batch)
	exec.CommitCount++

	duration := time.Since(startTime)
	rate := 0.0
	if duration.Seconds() > 0 {
		rate = float64(exec.WriteCount) / duration.Seconds()
	}
	logger.Infof("Batch done. Total: %d. Rate: %.2f rows/sec.", exec.WriteCount, rate)

	p.state = StateReading
	return nil
}

// LoadStep opens the file named by the targetFilePath parameter and runs a
// fresh Pipeline over it. The final pipeline state is reported in exec.State.
type LoadStep struct {
	Open        func(path string) (ReadCloser, error)
	NewPipeline func() *Pipeline
}

// NewLoadStep wires the CSV reader, people processor and writer into a step.
func NewLoadStep(writer Writer, chunkSize int, dryRun bool) *LoadStep {
	return &LoadStep{
		Open: func(path string) (ReadCloser, error) {
			return OpenCSVReader(path)
		},
		NewPipeline: func() *Pipeline {
			return NewPipeline(NewPersonProcessor(), writer, chunkSize, dryRun)
		},
	}
}

func (s *LoadStep) Name() string {
	return "loadCsvToDatabaseStep"
}

func (s *LoadStep) Execute(ctx context.Context, params models.JobParameters, exec *models.StepExecution) error {
	path, err := LoadParams(params)
	if err != nil {
		return err
	}

	r, err := s.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	return s.NewPipeline().Run(ctx, r, exec)
}
