// Package history keeps a record of generation runs in a badger database.
package history

import (
	"bytes"
	"encoding/gob"
	"time"
)

// ProjectRecord is the stored outcome of one project in a run.
type ProjectRecord struct {
	Name   string `json:"name" yaml:"name"`
	Files  int    `json:"files" yaml:"files"`
	Hidden int    `json:"hidden" yaml:"hidden"`
	Bytes  int    `json:"bytes" yaml:"bytes"`
	Status string `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run is one recorded generation run.
type Run struct {
	ID        string          `json:"id" yaml:"id"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	Root      string          `json:"root" yaml:"root"`
	Duration  time.Duration   `json:"duration" yaml:"duration"`
	Projects  []ProjectRecord `json:"projects" yaml:"projects"`
}

// Count returns the number of projects with the given status.
func (r *Run) Count(status string) int {
	n := 0
	for _, p := range r.Projects {
		if p.Status == status {
			n++
		}
	}
	return n
}

// TotalBytes returns the size of all manifests in the run.
func (r *Run) TotalBytes() int64 {
	var n int64
	for _, p := range r.Projects {
		n += int64(p.Bytes)
	}
	return n
}

// Encode serializes the run using gob.
func (r *Run) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes a run using gob.
func (r *Run) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(r)
}
