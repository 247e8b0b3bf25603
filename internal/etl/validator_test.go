package etl

import (
	"errors"
	"testing"

	"github.com/BartekS5/csvbatch/pkg/models"
)

func TestDownloadParams(t *testing.T) {
	u, target, err := DownloadParams(models.JobParameters{
		models.ParamSourceFileURL:  "https://example.com/people.csv",
		models.ParamTargetFilePath: "/tmp/people.csv",
	})
	if err != nil {
		t.Fatalf("DownloadParams: %v", err)
	}
	if u.Scheme != "https" || u.Host != "example.com" || target != "/tmp/people.csv" {
		t.Errorf("got %v, %q", u, target)
	}
}

func TestDownloadParamsInvalid(t *testing.T) {
	cases := map[string]models.JobParameters{
		"missing url":    {models.ParamTargetFilePath: "/tmp/x"},
		"no scheme":      {models.ParamSourceFileURL: "example.com/people.csv", models.ParamTargetFilePath: "/tmp/x"},
		"malformed url":  {models.ParamSourceFileURL: "http://[::1", models.ParamTargetFilePath: "/tmp/x"},
		"missing target": {models.ParamSourceFileURL: "http://example.com/x.csv"},
		"blank target":   {models.ParamSourceFileURL: "http://example.com/x.csv", models.ParamTargetFilePath: "  "},
	}
	for name, params := range cases {
		if _, _, err := DownloadParams(params); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", name, err)
		}
	}
}

func TestLoadParams(t *testing.T) {
	if _, err := LoadParams(models.JobParameters{}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	p, err := LoadParams(models.JobParameters{models.ParamTargetFilePath: "people.csv"})
	if err != nil || p != "people.csv" {
		t.Errorf("LoadParams = %q, %v", p, err)
	}
}
