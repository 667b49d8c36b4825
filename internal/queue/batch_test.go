package queue

import (
	"testing"

	"github.com/spigell/critique-matcher/internal/matching"
)

func TestResolve(t *testing.T) {
	batch := loadTestSnapshot(t).Pending()

	matches, err := batch.Resolve([]matching.Pair{{
		Request:     matching.Item{ID: "c1"},
		Counterpart: matching.Item{ID: "q2"},
		Fitness:     3.5,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matches.Len() != 1 || matches[0].Critique.ID != "c1" || matches[0].Request.ID != "q2" || matches[0].Fitness != 3.5 {
		t.Fatalf("unexpected matches: %+v", matches[0])
	}

	if _, err := batch.Resolve([]matching.Pair{{Request: matching.Item{ID: "c2"}, Counterpart: matching.Item{ID: "q1"}}}); err == nil {
		t.Fatalf("expected unknown critique error")
	}
}

func TestExclude(t *testing.T) {
	snapshot := loadTestSnapshot(t)
	batch := snapshot.Pending()

	excluded := batch.ExcludeRequests(func(r *CritiquerRequest) bool { return r.ID == "q1" })
	if len(excluded) != 1 || excluded[0] != "q1" {
		t.Fatalf("unexpected excluded: %v", excluded)
	}
	if len(batch.Requests) != 1 || batch.Requests[0].ID != "q2" {
		t.Fatalf("unexpected batch requests")
	}
	if len(snapshot.CritiquerRequests) != 2 {
		t.Fatalf("snapshot must not change when the batch does")
	}

	excluded = batch.ExcludeCritiques(func(*Critique) bool { return true })
	if len(excluded) != 1 || batch.Len() != 1 {
		t.Fatalf("unexpected batch after excluding critiques: %v", excluded)
	}
}

func TestReportByIndustry(t *testing.T) {
	batch := loadTestSnapshot(t).Pending()
	matches := Matches{{
		Critique: batch.Critiques[0],
		Request:  batch.Requests[0],
		Fitness:  12.5,
		AI:       &AIAssessment{Fit: true, Score: 0.91, Reason: "same field"},
	}}

	report := matches.ReportByIndustry()
	entries, ok := report["SOFT,DATA"]
	if !ok || len(entries) != 1 {
		t.Fatalf("expected industry key in report, got %v", report)
	}

	entry := entries[0]
	if entry["fitness"] != "12.50" || entry["critiquer"] != "u4" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["ai_fit"] != "true" || entry["ai_score"] != "0.91" || entry["ai_reason"] != "same field" {
		t.Fatalf("unexpected ai fields: %v", entry)
	}

	matches[0].AI = &AIAssessment{Error: "quota exceeded"}
	entry = matches.ReportByIndustry()["SOFT,DATA"][0]
	if entry["ai_error"] != "quota exceeded" {
		t.Fatalf("expected ai error, got %v", entry)
	}
	if _, ok := entry["ai_fit"]; ok {
		t.Fatalf("ai_fit must be omitted on error")
	}
}

func TestValidateIndustries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "single", input: "SOFT"},
		{name: "several", input: "SOFT,DATA,FIN"},
		{name: "empty", input: " ", wantErr: true},
		{name: "duplicate", input: "SOFT,SOFT", wantErr: true},
		{name: "unknown", input: "SOFT,COOKING", wantErr: true},
		{name: "trailing comma", input: "SOFT,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateIndustries(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateIndustries(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestExcludedFileRoundTrip(t *testing.T) {
	path := writeFile(t, "exclude.json", "")

	excluded, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(excluded.Items) != 0 {
		t.Fatalf("expected empty exclude list")
	}

	batch := loadTestSnapshot(t).Pending()
	excluded.Append(Matches{{Critique: batch.Critiques[0], Request: batch.Requests[0]}}.ToExcluded("rejected"))
	excluded.Append(&Excluded{Items: []*ExcludedEntry{{ID: "q2"}}})

	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	critiques := reloaded.IDs(KindCritique)
	if _, ok := critiques["c1"]; !ok {
		t.Fatalf("expected c1 excluded, got %v", critiques)
	}
	requests := reloaded.IDs(KindCritiquerRequest)
	if _, ok := requests["c1"]; ok {
		t.Fatalf("critique id must not apply to requests")
	}
	if _, ok := requests["q2"]; !ok {
		t.Fatalf("entry without kind applies to both queues")
	}
}
