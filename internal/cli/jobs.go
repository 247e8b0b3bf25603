package cli

import (
	"github.com/BartekS5/csvbatch/pkg/models"
	"github.com/BartekS5/csvbatch/pkg/utils"
	"github.com/spf13/cobra"
)

// JobOptions are the job parameters that can be given as flags. Trailing
// key=value arguments are accepted as well; flags win.
type JobOptions struct {
	SourceURL  string
	TargetPath string
	DryRun     bool
}

func (o *JobOptions) params(args []string) (models.JobParameters, error) {
	fromArgs, err := utils.ParseJobParameters(args)
	if err != nil {
		return nil, err
	}
	return utils.Merge(fromArgs, models.JobParameters{
		models.ParamSourceFileURL:  o.SourceURL,
		models.ParamTargetFilePath: o.TargetPath,
	}), nil
}

func addSourceFlag(cmd *cobra.Command, o *JobOptions) {
	cmd.Flags().StringVarP(&o.SourceURL, "source-url", "s", "", "URL of the CSV file (sourceFileUrl)")
}

func addTargetFlag(cmd *cobra.Command, o *JobOptions) {
	cmd.Flags().StringVarP(&o.TargetPath, "target-path", "t", "", "Local path of the CSV file (targetFilePath)")
}

func addDryRunFlag(cmd *cobra.Command, o *JobOptions) {
	cmd.Flags().BoolVar(&o.DryRun, "dry-run", false, "Read and filter rows without writing to the database")
}

func NewDownloadCmd(root *rootOptions) *cobra.Command {
	opts := &JobOptions{}
	cmd := &cobra.Command{
		Use:   "download [key=value...]",
		Short: "Run downloadCsvFileJob",
		RunE: func(c *cobra.Command, args []string) error {
			return runDownload(c, root, opts, args)
		},
	}
	addSourceFlag(cmd, opts)
	addTargetFlag(cmd, opts)
	return cmd
}

func NewLoadCmd(root *rootOptions) *cobra.Command {
	opts := &JobOptions{}
	cmd := &cobra.Command{
		Use:   "load [key=value...]",
		Short: "Run loadCsvToDatabaseJob",
		RunE: func(c *cobra.Command, args []string) error {
			return runLoad(c, root, opts, args)
		},
	}
	addTargetFlag(cmd, opts)
	addDryRunFlag(cmd, opts)
	return cmd
}

func NewRunCmd(root *rootOptions) *cobra.Command {
	opts := &JobOptions{}
	cmd := &cobra.Command{
		Use:   "run [key=value...]",
		Short: "Run downloadCsvFileJob, then loadCsvToDatabaseJob on the downloaded file",
		RunE: func(c *cobra.Command, args []string) error {
			return runAll(c, root, opts, args)
		},
	}
	addSourceFlag(cmd, opts)
	addTargetFlag(cmd, opts)
	addDryRunFlag(cmd, opts)
	return cmd
}

func NewHistoryCmd(root *rootOptions) *cobra.Command {
	var jobName string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded job executions (requires mongo.uri)",
		RunE: func(c *cobra.Command, args []string) error {
			return runHistory(c, root, jobName, limit)
		},
	}
	cmd.Flags().StringVarP(&jobName, "job", "j", "", "Only show executions of this job")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of executions to show")
	return cmd
}
