package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BartekS5/csvbatch/pkg/logger"
	"github.com/BartekS5/csvbatch/pkg/models"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// DownloadFailedExit prefixes the exit message of a download step whose
// failure was logged instead of returned.
const DownloadFailedExit = "DOWNLOAD_FAILED"

// FetchOptions configures a Fetcher.
type FetchOptions struct {
	HTTPClient *http.Client
	// S3 enables s3://bucket/key sources when set.
	S3 s3iface.S3API
	// Atomic writes to a temporary file next to the target and renames it
	// into place, so a failed copy leaves the previous file untouched.
	Atomic bool
}

// Fetcher copies a remote resource to a local file.
type Fetcher struct {
	openers map[string]Opener
	atomic  bool
}

func NewFetcher(opts FetchOptions) *Fetcher {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	f := &Fetcher{
		openers: map[string]Opener{
			"http":  &httpOpener{client: client},
			"https": &httpOpener{client: client},
			"file":  fileOpener{},
		},
		atomic: opts.Atomic,
	}
	if opts.S3 != nil {
		f.openers["s3"] = &s3Opener{client: opts.S3}
	}
	return f
}

// Fetch copies every byte of src to target, replacing any existing file.
// All failures are returned as acquisition errors.
func (f *Fetcher) Fetch(ctx context.Context, src *url.URL, target string) (int64, error) {
	opener, ok := f.openers[strings.ToLower(src.Scheme)]
	if !ok {
		return 0, newError(KindAcquisition, fmt.Errorf("unsupported scheme %q", src.Scheme))
	}

	in, err := opener.Open(ctx, src)
	if err != nil {
		return 0, newError(KindAcquisition, fmt.Errorf("open %s: %w", redact(src), err))
	}
	defer in.Close()

	var n int64
	if f.atomic {
		n, err = writeAtomic(target, in)
	} else {
		n, err = writeOverwrite(target, in)
	}
	if err != nil {
		return n, newError(KindAcquisition, fmt.Errorf("copy to %s: %w", target, err))
	}
	return n, nil
}

func writeOverwrite(dest string, r io.Reader) (int64, error) {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func writeAtomic(dest string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0o644)
	}
	if err == nil {
		err = os.Rename(tmpPath, dest)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return n, err
	}
	return n, nil
}

// redact drops credentials from u for logging.
func redact(u *url.URL) string {
	if u.User == nil {
		return u.String()
	}
	c := *u
	c.User = url.User("xxxxx")
	return c.String()
}

type httpOpener struct {
	client *http.Client
}

func (o *httpOpener) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

type fileOpener struct{}

func (fileOpener) Open(_ context.Context, u *url.URL) (io.ReadCloser, error) {
	if u.Host != "" && u.Host != "localhost" {
		return nil, fmt.Errorf("remote file host %q not supported", u.Host)
	}
	if u.Path == "" {
		return nil, errors.New("empty file path")
	}
	return os.Open(filepath.FromSlash(u.Path))
}

type s3Opener struct {
	client s3iface.S3API
}

func (o *s3Opener) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, fmt.Errorf("s3 url must be s3://bucket/key")
	}
	out, err := o.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// DownloadStep runs the Fetcher as a single-shot job step.
type DownloadStep struct {
	Fetcher *Fetcher
	// FailOnError returns download failures to the launcher. When false the
	// failure is logged and the step still completes.
	FailOnError bool
}

func (s *DownloadStep) Name() string {
	return "downloadCsvFileStep"
}

func (s *DownloadStep) Execute(ctx context.Context, params models.JobParameters, exec *models.StepExecution) error {
	src, target, err := DownloadParams(params)
	if err != nil {
		return err
	}

	n, err := s.Fetcher.Fetch(ctx, src, target)
	if err != nil {
		if s.FailOnError {
			return err
		}
		logger.Errorf("Failed to get csv file: %v", err)
		exec.ExitMessage = DownloadFailedExit + ": " + err.Error()
		return nil
	}

	logger.Infof("File '%s' has been downloaded from '%s' (%d bytes)", target, redact(src), n)
	return nil
}
