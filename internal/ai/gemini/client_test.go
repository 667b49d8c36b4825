package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeModels struct {
	queue []fakeResponse
	calls int
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func newTestGenerator(models *fakeModels, retries int) *Generator {
	g := newGenerator(models, "", retries, nil)
	g.initialDelay = 0
	return g
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	models := &fakeModels{queue: []fakeResponse{
		{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}},
		{err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}},
		{resp: textResponse(`{"fit": true}`)},
	}}

	out, err := newTestGenerator(models, 2).GenerateContent(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"fit": true}` {
		t.Fatalf("unexpected output: %q", out)
	}
	if models.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", models.calls)
	}
}

func TestGeneratorGivesUp(t *testing.T) {
	models := &fakeModels{queue: []fakeResponse{
		{err: genai.APIError{Code: http.StatusServiceUnavailable}},
		{err: genai.APIError{Code: http.StatusServiceUnavailable}},
	}}

	if _, err := newTestGenerator(models, 1).GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error after retries are exhausted")
	}
	if models.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", models.calls)
	}
}

func TestGeneratorDoesNotRetryPermanentError(t *testing.T) {
	models := &fakeModels{queue: []fakeResponse{
		{err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}},
	}}

	if _, err := newTestGenerator(models, 3).GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error")
	}
	if models.calls != 1 {
		t.Fatalf("expected a single call, got %d", models.calls)
	}
}

func TestGeneratorRejectsEmptyInputAndOutput(t *testing.T) {
	g := newTestGenerator(&fakeModels{queue: []fakeResponse{{resp: textResponse("  ")}}}, 0)

	if _, err := g.GenerateContent(context.Background(), "   "); err == nil {
		t.Fatalf("expected empty prompt error")
	}
	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected empty response error")
	}
	if g.Model() != defaultModel {
		t.Fatalf("expected default model, got %q", g.Model())
	}
}
