// Package state writes an audit record for every completed or cancelled
// wizard run.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/mark3labs/stepwise/internal/logger"
	"github.com/mark3labs/stepwise/internal/wizard"
)

// RunsDir is the directory under the data dir holding run records.
const RunsDir = "runs"

var log = logger.Named("state")

// Record is the outcome of one run. It is an audit trail, not a resume
// point: nothing reads it back into a wizard.
type Record struct {
	RunID      string         `json:"run_id" yaml:"run_id"`
	State      wizard.State   `json:"state" yaml:"state"`
	Page       string         `json:"page" yaml:"page"`
	Step       int            `json:"step" yaml:"step"`
	Steps      int            `json:"steps" yaml:"steps"`
	Context    map[string]any `json:"context" yaml:"context"`
	EndedAt    time.Time      `json:"ended_at" yaml:"ended_at"`
	HookOutput string         `json:"hook_output,omitempty" yaml:"hook_output,omitempty"`
}

// RecordFor captures a run.
func RecordFor(w *wizard.Wizard, now time.Time) *Record {
	id, _, _ := w.Current()
	return &Record{
		RunID:   w.RunID(),
		State:   w.State(),
		Page:    string(id),
		Step:    w.Index() + 1,
		Steps:   w.Len(),
		Context: w.Shared().Snapshot(),
		EndedAt: now.UTC(),
	}
}

func recordPath(dataDir, runID string) string {
	return filepath.Join(dataDir, RunsDir, slug.Make(runID)+".json")
}

// Save writes the record to <dataDir>/runs/<run-id>.json and returns the
// path.
func Save(dataDir string, rec *Record) (string, error) {
	if rec.RunID == "" {
		return "", errors.New("record has no run id")
	}
	dir := filepath.Join(dataDir, RunsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating runs directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling run record: %w", err)
	}

	path := recordPath(dataDir, rec.RunID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing run record: %w", err)
	}

	log.Debug("run record saved to %s", path)
	return path, nil
}

// Load reads one record.
func Load(dataDir, runID string) (*Record, error) {
	data, err := os.ReadFile(recordPath(dataDir, runID))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing run record: %w", err)
	}
	return &rec, nil
}

// List returns all records, newest first. Unreadable files are skipped.
func List(dataDir string) ([]*Record, error) {
	entries, err := os.ReadDir(filepath.Join(dataDir, RunsDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []*Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dataDir, RunsDir, e.Name()))
		if err != nil {
			log.Warn("reading %s: %v", e.Name(), err)
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			log.Warn("parsing %s: %v", e.Name(), err)
			continue
		}
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	return out, nil
}
