package generator

import (
	"errors"
	"fmt"
	"time"
)

// Status is the outcome of generating one project manifest.
type Status string

// Project statuses.
const (
	StatusWritten   Status = "written"
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
)

// ProjectResult describes the manifest generated for one project folder.
type ProjectResult struct {
	Name        string   `json:"name" yaml:"name"`
	OutputPath  string   `json:"output_path" yaml:"output_path"`
	Files       int      `json:"files" yaml:"files"`
	Hidden      int      `json:"hidden" yaml:"hidden"`
	Synthesized []string `json:"synthesized,omitempty" yaml:"synthesized,omitempty"`
	Bytes       int      `json:"bytes" yaml:"bytes"`
	Status      Status   `json:"status" yaml:"status"`
	Warnings    []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error       string   `json:"error,omitempty" yaml:"error,omitempty"`

	// Err is the failure of a StatusFailed project.
	Err error `json:"-" yaml:"-"`
}

// Report is the outcome of a generation run.
type Report struct {
	Root      string          `json:"root" yaml:"root"`
	StartedAt time.Time       `json:"started_at" yaml:"started_at"`
	Duration  time.Duration   `json:"duration" yaml:"duration"`
	Projects  []ProjectResult `json:"projects" yaml:"projects"`
}

// Failed returns the number of failed projects.
func (r *Report) Failed() int {
	return r.Count(StatusFailed)
}

// Count returns the number of projects with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, p := range r.Projects {
		if p.Status == status {
			n++
		}
	}
	return n
}

// Err joins the errors of all failed projects, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, p := range r.Projects {
		if p.Status == StatusFailed && p.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, p.Err))
		}
	}
	return errors.Join(errs...)
}
