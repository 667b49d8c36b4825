package queue

import (
	"encoding/json"
	"os"
	"time"
)

const (
	KindCritique         = "critique"
	KindCritiquerRequest = "critiquer_request"
)

// Excluded lists queue entries that must be kept out of matching.
type Excluded struct {
	Items []*ExcludedEntry
}

type ExcludedEntry struct {
	ID         string
	Kind       string
	Reason     string `json:",omitempty"`
	ExcludedAt time.Time
}

func GetExcludedFromFile(path string) (*Excluded, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Excluded{}, nil
	}

	var excluded Excluded
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *Excluded) Append(s *Excluded) {
	e.Items = append(e.Items, s.Items...)
}

// IDs returns the excluded ids of the given kind. An entry without a kind
// applies to both queues.
func (e *Excluded) IDs(kind string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, entry := range e.Items {
		if entry.Kind == "" || entry.Kind == kind {
			ids[entry.ID] = struct{}{}
		}
	}
	return ids
}

func (e *Excluded) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// ToExcluded lists the critiques of the matches, used to park rejected
// pairings so they are skipped on the next run.
func (m Matches) ToExcluded(reason string) *Excluded {
	excluded := &Excluded{}
	for _, match := range m {
		excluded.Items = append(excluded.Items, &ExcludedEntry{
			ID:         match.Critique.ID,
			Kind:       KindCritique,
			Reason:     reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}
