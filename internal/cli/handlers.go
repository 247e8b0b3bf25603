package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/BartekS5/csvbatch/internal/config"
	"github.com/BartekS5/csvbatch/internal/etl"
	"github.com/BartekS5/csvbatch/internal/job"
	"github.com/BartekS5/csvbatch/pkg/database"
	"github.com/BartekS5/csvbatch/pkg/logger"
	"github.com/BartekS5/csvbatch/pkg/models"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	downloadJobName = "downloadCsvFileJob"
	loadJobName     = "loadCsvToDatabaseJob"
)

// app holds the resources shared by one command invocation.
type app struct {
	cfg      *config.Config
	repo     job.Repository
	launcher *job.Launcher

	db    *sql.DB
	mongo *mongo.Client
}

func newApp(root *rootOptions) (*app, error) {
	cfg, err := config.LoadConfig(root.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	a := &app{cfg: cfg}
	if cfg.MongoURI != "" {
		client, err := database.ConnectMongo(cfg.MongoURI)
		if err != nil {
			logger.Close()
			return nil, err
		}
		a.mongo = client
		a.repo = job.NewMongoRepository(client, cfg.MongoDatabase)
	} else {
		a.repo = job.NewMemoryRepository()
	}
	a.launcher = job.NewLauncher(a.repo)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.mongo != nil {
		database.DisconnectMongo(a.mongo)
	}
	logger.Close()
}

// downloadJob builds the download job. An AWS session is only created for
// s3:// sources.
func (a *app) downloadJob(params models.JobParameters) (*job.Job, error) {
	opts := etl.FetchOptions{
		HTTPClient: &http.Client{Timeout: a.cfg.FetchTimeout},
		Atomic:     a.cfg.FetchAtomic,
	}
	if src, err := url.Parse(params[models.ParamSourceFileURL]); err == nil && strings.EqualFold(src.Scheme, "s3") {
		sess, err := session.NewSession(&aws.Config{Region: aws.String(a.cfg.AWSRegion)})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		opts.S3 = s3.New(sess)
	}

	return &job.Job{
		Name:           downloadJobName,
		Steps:          []job.Step{&etl.DownloadStep{Fetcher: etl.NewFetcher(opts), FailOnError: a.cfg.FetchFailOnError}},
		IncrementRunID: true,
	}, nil
}

func (a *app) loadJob(dryRun bool) (*job.Job, error) {
	var writer etl.Writer
	if !dryRun {
		if err := a.cfg.RequireSQL(); err != nil {
			return nil, err
		}
		if a.db == nil {
			db, err := database.ConnectSQL(a.cfg.SQLDriver, a.cfg.SQLDSN)
			if err != nil {
				return nil, err
			}
			a.db = db
		}
		writer = etl.NewSQLWriter(a.db, a.cfg.SQLDriver)
	}

	return &job.Job{
		Name:  loadJobName,
		Steps: []job.Step{etl.NewLoadStep(writer, a.cfg.ChunkSize, dryRun)},
	}, nil
}

func (a *app) launch(ctx context.Context, out io.Writer, j *job.Job, params models.JobParameters) (*models.JobExecution, error) {
	exec, err := a.launcher.Run(ctx, j, params)
	printExecution(out, exec)
	return exec, err
}

func runDownload(cmd *cobra.Command, root *rootOptions, opts *JobOptions, args []string) error {
	params, err := opts.params(args)
	if err != nil {
		return err
	}
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	j, err := a.downloadJob(params)
	if err != nil {
		return err
	}
	_, err = a.launch(context.Background(), cmd.OutOrStdout(), j, params)
	return err
}

func runLoad(cmd *cobra.Command, root *rootOptions, opts *JobOptions, args []string) error {
	params, err := opts.params(args)
	if err != nil {
		return err
	}
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	j, err := a.loadJob(opts.DryRun)
	if err != nil {
		return err
	}
	_, err = a.launch(context.Background(), cmd.OutOrStdout(), j, params)
	return err
}

// runAll runs the load job only once the download job has finished and
// actually produced the file.
func runAll(cmd *cobra.Command, root *rootOptions, opts *JobOptions, args []string) error {
	params, err := opts.params(args)
	if err != nil {
		return err
	}
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	dj, err := a.downloadJob(params)
	if err != nil {
		return err
	}
	exec, err := a.launch(ctx, out, dj, params)
	if err != nil {
		return err
	}
	if strings.HasPrefix(exec.ExitMessage, etl.DownloadFailedExit) {
		logger.Warnf("Skipping %s: download did not produce a file", loadJobName)
		return nil
	}

	lj, err := a.loadJob(opts.DryRun)
	if err != nil {
		return err
	}
	loadParams := models.JobParameters{models.ParamTargetFilePath: params[models.ParamTargetFilePath]}
	_, err = a.launch(ctx, out, lj, loadParams)
	return err
}

func runHistory(cmd *cobra.Command, root *rootOptions, jobName string, limit int) error {
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if a.mongo == nil {
		logger.Warn("mongo.uri is not set; executions are not persisted between runs")
	}

	execs, err := a.repo.List(context.Background(), jobName, limit)
	if err != nil {
		return fmt.Errorf("failed to list job executions: %w", err)
	}
	if len(execs) == 0 {
		fmt.Fprintln(out, "No job executions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tSTATUS\tSTARTED\tDURATION\tEXIT")
	for _, e := range execs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.JobName, e.Status, e.StartTime.Format(time.RFC3339),
			e.EndTime.Sub(e.StartTime).Round(time.Millisecond), e.ExitMessage)
	}
	return tw.Flush()
}

func printExecution(out io.Writer, exec *models.JobExecution) {
	fmt.Fprintf(out, "Job %s finished with status %s (execution %s)\n", exec.JobName, exec.Status, exec.ID)
	for _, s := range exec.Steps {
		fmt.Fprintf(out, "  step %s: %s read=%d filtered=%d written=%d commits=%d rollbacks=%d\n",
			s.StepName, s.Status, s.ReadCount, s.FilterCount, s.WriteCount, s.CommitCount, s.RollbackCount)
	}
	if exec.ExitMessage != "" {
		fmt.Fprintf(out, "  exit: %s\n", exec.ExitMessage)
	}
}
