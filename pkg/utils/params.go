package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BartekS5/csvbatch/pkg/models"
)

// ParseJobParameters converts "key=value" arguments into job parameters.
// Later occurrences of a key override earlier ones.
func ParseJobParameters(args []string) (models.JobParameters, error) {
	params := make(models.JobParameters, len(args))
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid job parameter %q, expected key=value", arg)
		}
		params[key] = val
	}
	return params, nil
}

// Merge returns a copy of base with every non-empty value of extra applied.
func Merge(base models.JobParameters, extra models.JobParameters) models.JobParameters {
	out := make(models.JobParameters, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// FormatJobParameters renders parameters as a stable "{k=v, ...}" string for logs.
func FormatJobParameters(params models.JobParameters) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
