package queue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var ErrStaleMatch = errors.New("match is no longer applicable")

// Snapshot is the persisted state of both queues.
type Snapshot struct {
	Critiques         []*Critique         `json:"critiques" yaml:"critiques" mapstructure:"critiques"`
	CritiquerRequests []*CritiquerRequest `json:"critiquer_requests" yaml:"critiquer_requests" mapstructure:"critiquer_requests"`
}

// Assignment records a critiquer assigned to a critique.
type Assignment struct {
	CritiqueID  string    `json:"critique_id"`
	ResumeID    string    `json:"resume_id"`
	CritiquerID string    `json:"critiquer_id"`
	RequestID   string    `json:"critiquer_request_id"`
	MatchedOn   time.Time `json:"matched_on"`
}

// LoadSnapshot reads a JSON or YAML snapshot. The format is picked by the file
// extension; anything but .yaml and .yml is treated as JSON.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %q: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return &Snapshot{}, nil
	}

	var raw map[string]any
	if isYAML(path) {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot %q: %w", path, err)
	}

	var snapshot Snapshot
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
		Result:     &snapshot,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding snapshot %q: %w", path, err)
	}

	return &snapshot, nil
}

// WriteFile replaces the file at path with the snapshot. The content is written
// to a temporary file in the same directory first and renamed over the target,
// so readers see either the old or the new snapshot.
func (s *Snapshot) WriteFile(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing snapshot %q: %w", path, err)
	}

	return nil
}

// Pending returns the critiques still waiting for a critiquer together with
// every queued critiquer request.
func (s *Snapshot) Pending() *Batch {
	batch := &Batch{}
	for _, c := range s.Critiques {
		if c.Pending() {
			batch.Critiques = append(batch.Critiques, c)
		}
	}
	batch.Requests = append(batch.Requests, s.CritiquerRequests...)
	return batch
}

// Assign gives every matched critique its critiquer and removes the consumed
// critiquer requests. Either all matches are applied or, on error, none.
func (s *Snapshot) Assign(matches []*Match, now time.Time) ([]*Assignment, error) {
	critiques := make(map[string]*Critique, len(s.Critiques))
	for _, c := range s.Critiques {
		critiques[c.ID] = c
	}
	requests := make(map[string]*CritiquerRequest, len(s.CritiquerRequests))
	for _, r := range s.CritiquerRequests {
		requests[r.ID] = r
	}

	usedCritiques := make(map[string]struct{}, len(matches))
	usedRequests := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if m == nil || m.Critique == nil || m.Request == nil {
			return nil, fmt.Errorf("%w: incomplete match", ErrStaleMatch)
		}

		critique, ok := critiques[m.Critique.ID]
		if !ok {
			return nil, fmt.Errorf("%w: critique %s not found", ErrStaleMatch, m.Critique.ID)
		}
		if !critique.Pending() {
			return nil, fmt.Errorf("%w: critique %s is already matched or submitted", ErrStaleMatch, critique.ID)
		}
		if _, ok := requests[m.Request.ID]; !ok {
			return nil, fmt.Errorf("%w: critiquer request %s not found", ErrStaleMatch, m.Request.ID)
		}
		if _, dup := usedCritiques[critique.ID]; dup {
			return nil, fmt.Errorf("%w: critique %s matched twice", ErrStaleMatch, critique.ID)
		}
		if _, dup := usedRequests[m.Request.ID]; dup {
			return nil, fmt.Errorf("%w: critiquer request %s matched twice", ErrStaleMatch, m.Request.ID)
		}
		usedCritiques[critique.ID] = struct{}{}
		usedRequests[m.Request.ID] = struct{}{}
	}

	assignments := make([]*Assignment, 0, len(matches))
	for _, m := range matches {
		critique := critiques[m.Critique.ID]
		request := requests[m.Request.ID]

		matchedOn := now
		critique.Critiquer = request.Critiquer
		critique.MatchedOn = &matchedOn

		resumeID := ""
		if critique.Resume != nil {
			resumeID = critique.Resume.ID
		}

		assignments = append(assignments, &Assignment{
			CritiqueID:  critique.ID,
			ResumeID:    resumeID,
			CritiquerID: request.Critiquer.id(),
			RequestID:   request.ID,
			MatchedOn:   matchedOn,
		})
	}

	left := s.CritiquerRequests[:0]
	for _, r := range s.CritiquerRequests {
		if _, used := usedRequests[r.ID]; !used {
			left = append(left, r)
		}
	}
	s.CritiquerRequests = left

	return assignments, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
