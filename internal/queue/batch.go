package queue

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spigell/critique-matcher/internal/matching"
)

// Batch is the working set handed to the filters and the matcher. Removing
// entries from a batch never touches the snapshot it came from.
type Batch struct {
	Critiques []*Critique
	Requests  []*CritiquerRequest
}

// Match is a proposed critique and critiquer request pairing.
type Match struct {
	Critique *Critique         `json:"critique"`
	Request  *CritiquerRequest `json:"critiquer_request"`
	Fitness  float64           `json:"fitness"`
	AI       *AIAssessment     `json:"ai,omitempty"`
}

type AIAssessment struct {
	Fit    bool    `json:"fit"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
	Raw    string  `json:"raw,omitempty"`
	Error  string  `json:"error,omitempty"`
}

type Matches []*Match

func (b *Batch) Len() int {
	return len(b.Critiques) + len(b.Requests)
}

// RequestItems returns the critiques as matcher requests, in batch order.
func (b *Batch) RequestItems() []matching.Item {
	items := make([]matching.Item, 0, len(b.Critiques))
	for _, c := range b.Critiques {
		items = append(items, c.Item())
	}
	return items
}

// CounterpartItems returns the critiquer requests as matcher counterparts.
func (b *Batch) CounterpartItems() []matching.Item {
	items := make([]matching.Item, 0, len(b.Requests))
	for _, r := range b.Requests {
		items = append(items, r.Item())
	}
	return items
}

// Resolve maps matcher pairs back to the batch entries they were built from.
func (b *Batch) Resolve(pairs []matching.Pair) (Matches, error) {
	critiques := make(map[string]*Critique, len(b.Critiques))
	for _, c := range b.Critiques {
		critiques[c.ID] = c
	}
	requests := make(map[string]*CritiquerRequest, len(b.Requests))
	for _, r := range b.Requests {
		requests[r.ID] = r
	}

	matches := make(Matches, 0, len(pairs))
	for _, p := range pairs {
		critique, ok := critiques[p.Request.ID]
		if !ok {
			return nil, fmt.Errorf("unknown critique %q in pairing", p.Request.ID)
		}
		request, ok := requests[p.Counterpart.ID]
		if !ok {
			return nil, fmt.Errorf("unknown critiquer request %q in pairing", p.Counterpart.ID)
		}
		matches = append(matches, &Match{Critique: critique, Request: request, Fitness: p.Fitness})
	}

	return matches, nil
}

// ExcludeCritiques drops critiques for which drop returns true and returns
// their ids.
func (b *Batch) ExcludeCritiques(drop func(*Critique) bool) []string {
	var excluded []string
	kept := make([]*Critique, 0, len(b.Critiques))
	for _, c := range b.Critiques {
		if drop(c) {
			excluded = append(excluded, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	b.Critiques = kept
	return excluded
}

// ExcludeRequests drops critiquer requests for which drop returns true and
// returns their ids.
func (b *Batch) ExcludeRequests(drop func(*CritiquerRequest) bool) []string {
	var excluded []string
	kept := make([]*CritiquerRequest, 0, len(b.Requests))
	for _, r := range b.Requests {
		if drop(r) {
			excluded = append(excluded, r.ID)
			continue
		}
		kept = append(kept, r)
	}
	b.Requests = kept
	return excluded
}

func (m Matches) Len() int {
	return len(m)
}

// ReportByIndustry groups the matches by the industries of the critiqued resume.
func (m Matches) ReportByIndustry() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, match := range m {
		key := match.Critique.Industries()
		entry := map[string]string{
			"critique":             match.Critique.ID,
			"resume uploader":      match.Critique.Uploader(),
			"critiquer":            match.Request.Critiquer.id(),
			"critiquer industries": match.Request.Industries,
			"fitness":              fmt.Sprintf("%.2f", match.Fitness),
		}
		if match.AI != nil {
			if match.AI.Error != "" {
				entry["ai_error"] = match.AI.Error
			} else {
				entry["ai_fit"] = fmt.Sprintf("%t", match.AI.Fit)
				entry["ai_score"] = fmt.Sprintf("%.2f", match.AI.Score)
				if match.AI.Reason != "" {
					entry["ai_reason"] = match.AI.Reason
				}
			}
		}
		report[key] = append(report[key], entry)
	}
	return report
}

func (m Matches) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}
	return file.Name(), nil
}
