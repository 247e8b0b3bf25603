package etl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/BartekS5/csvbatch/pkg/models"
)

// DownloadParams extracts and checks the parameters of the download job.
func DownloadParams(params models.JobParameters) (*url.URL, string, error) {
	raw := strings.TrimSpace(params[models.ParamSourceFileURL])
	if raw == "" {
		return nil, "", fmt.Errorf("%w: %s is required", ErrInvalidParameter, models.ParamSourceFileURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrInvalidParameter, models.ParamSourceFileURL, err)
	}
	if u.Scheme == "" {
		return nil, "", fmt.Errorf("%w: %s %q has no scheme", ErrInvalidParameter, models.ParamSourceFileURL, raw)
	}

	target, err := requiredPath(params)
	if err != nil {
		return nil, "", err
	}
	return u, target, nil
}

// LoadParams extracts and checks the parameters of the load job.
func LoadParams(params models.JobParameters) (string, error) {
	return requiredPath(params)
}

func requiredPath(params models.JobParameters) (string, error) {
	p := strings.TrimSpace(params[models.ParamTargetFilePath])
	if p == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidParameter, models.ParamTargetFilePath)
	}
	return p, nil
}
