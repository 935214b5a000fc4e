package patentverify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeLLMCaller struct {
	responses []string
	errs      []error
	prompts   []string
	idx       int
}

func (f *fakeLLMCaller) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	i := f.idx
	f.idx++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", nil
}

func (f *fakeLLMCaller) ModelName() string { return "test-model" }

func TestSearchParsesCandidates(t *testing.T) {
	caller := &fakeLLMCaller{responses: []string{
		`{"patents": [{"patent_id": "US1234567A", "title": "Synthesis of X", "relevancy": "High"}]}`,
	}}
	s := NewSearcher(caller, 20, time.Minute)

	patents, err := s.Search(context.Background(), "compound x")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(patents) != 1 {
		t.Fatalf("patents=%d, want 1", len(patents))
	}
	if patents[0].PatentID != "US1234567A" || patents[0].Title != "Synthesis of X" || patents[0].Relevancy != "High" {
		t.Fatalf("unexpected candidate: %+v", patents[0])
	}
}

func TestSearchAcceptsMarkdownFences(t *testing.T) {
	caller := &fakeLLMCaller{responses: []string{
		"```json\n{\"patents\": [{\"patent_id\": \"US1A\", \"title\": \"t\", \"relevancy\": \"r\"}]}\n```",
	}}
	patents, err := NewSearcher(caller, 20, time.Minute).Search(context.Background(), "c")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(patents) != 1 || patents[0].PatentID != "US1A" {
		t.Fatalf("unexpected candidates: %+v", patents)
	}
}

func TestSearchInvalidJSONReturnsError(t *testing.T) {
	caller := &fakeLLMCaller{responses: []string{"I found some patents for you:"}}
	patents, err := NewSearcher(caller, 20, time.Minute).Search(context.Background(), "c")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if len(patents) != 0 {
		t.Fatalf("patents=%d, want 0", len(patents))
	}
}

func TestSearchCallErrorIsSingleShot(t *testing.T) {
	caller := &fakeLLMCaller{errs: []error{errors.New("overloaded")}}
	_, err := NewSearcher(caller, 20, time.Minute).Search(context.Background(), "c")
	if err == nil {
		t.Fatal("expected call error")
	}
	if caller.idx != 1 {
		t.Fatalf("calls=%d, want 1 (no retry at the search layer)", caller.idx)
	}
}

func TestSearchDropsEmptyPatentIDs(t *testing.T) {
	caller := &fakeLLMCaller{responses: []string{
		`{"patents": [{"patent_id": "", "title": "t"}, {"patent_id": "  ", "title": "t"}, {"patent_id": "US1A", "title": "t"}]}`,
	}}
	patents, err := NewSearcher(caller, 20, time.Minute).Search(context.Background(), "c")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(patents) != 1 || patents[0].PatentID != "US1A" {
		t.Fatalf("unexpected candidates: %+v", patents)
	}
}

func TestSearchPromptEmbedsCompoundAndLimit(t *testing.T) {
	caller := &fakeLLMCaller{responses: []string{`{"patents": []}`}}
	if _, err := NewSearcher(caller, 7, time.Minute).Search(context.Background(), "acetic acid"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(caller.prompts) != 1 {
		t.Fatalf("prompts=%d, want 1", len(caller.prompts))
	}
	prompt := caller.prompts[0]
	if !strings.Contains(prompt, "acetic acid") {
		t.Fatal("prompt missing compound name")
	}
	if !strings.Contains(prompt, "top 7") {
		t.Fatal("prompt missing max patent count")
	}
	if !strings.Contains(prompt, "Never invent a patent") {
		t.Fatal("prompt missing anti-fabrication instruction")
	}
}
