package patentverify

import (
	"context"
	"errors"
	"testing"
)

type fakeSearcher struct {
	candidates []CandidatePatent
	err        error
}

func (f *fakeSearcher) Search(context.Context, string) ([]CandidatePatent, error) {
	return f.candidates, f.err
}

func (f *fakeSearcher) ModelName() string { return "test-model" }

type fakeFetcher struct {
	titles map[string]string
}

func (f *fakeFetcher) FetchTitle(_ context.Context, patentID string) (string, error) {
	title, ok := f.titles[patentID]
	if !ok {
		return "", ErrTitleNotFound
	}
	return title, nil
}

func newTestPipeline(t *testing.T, searcher CandidateSearcher, fetcher Fetcher) (*Pipeline, *ResultStore) {
	t.Helper()
	store := NewResultStore(t.TempDir())
	p := NewPipeline(searcher, fetcher, store, Config{RequestDelay: 0})
	return p, store
}

func TestRunNoCandidatesIsTerminalNotFatal(t *testing.T) {
	p, _ := newTestPipeline(t, &fakeSearcher{}, &fakeFetcher{})
	res := p.Run(context.Background(), "compound x")
	if res.Success {
		t.Fatal("expected success=false")
	}
	if res.PatentsFound != 0 || res.PatentsVerified != 0 {
		t.Fatalf("counts found=%d verified=%d, want 0/0", res.PatentsFound, res.PatentsVerified)
	}
	if res.Message == "" {
		t.Fatal("expected explanatory message")
	}
	if res.Error != "" {
		t.Fatalf("no-candidates is not an error, got %q", res.Error)
	}
}

func TestRunSearchFailureDegradesToNoCandidates(t *testing.T) {
	p, _ := newTestPipeline(t, &fakeSearcher{err: errors.New("overloaded")}, &fakeFetcher{})
	res := p.Run(context.Background(), "compound x")
	if res.Success || res.PatentsFound != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Message == "" {
		t.Fatal("expected failure message")
	}
}

func TestRunIdenticalTitleVerifies(t *testing.T) {
	searcher := &fakeSearcher{candidates: []CandidatePatent{
		{PatentID: "US1234567A", Title: "Synthesis of X", Relevancy: "High"},
	}}
	fetcher := &fakeFetcher{titles: map[string]string{"US1234567A": "Synthesis of X"}}
	p, store := newTestPipeline(t, searcher, fetcher)

	res := p.Run(context.Background(), "compound x")
	if !res.Success {
		t.Fatalf("run failed: %+v", res)
	}
	if res.PatentsFound != 1 || res.PatentsVerified != 1 {
		t.Fatalf("counts found=%d verified=%d", res.PatentsFound, res.PatentsVerified)
	}
	rec := res.VerifiedPatents[0]
	if rec.SimilarityScore != 1.0 || !rec.Verified {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Relevancy != "High" {
		t.Fatalf("relevancy not carried over: %+v", rec)
	}

	file := store.Load("compound x")
	if len(file.VerifiedPatents) != 1 || file.VerifiedPatents[0].PatentID != "US1234567A" {
		t.Fatalf("record not persisted: %+v", file)
	}
	if res.OutputFile != store.OutputPath("compound x") {
		t.Fatalf("output file %q", res.OutputFile)
	}
}

func TestRunUnfetchableCandidateIsDropped(t *testing.T) {
	searcher := &fakeSearcher{candidates: []CandidatePatent{
		{PatentID: "CN0000001A", Title: "Missing"},
		{PatentID: "US1234567A", Title: "Synthesis of X"},
	}}
	fetcher := &fakeFetcher{titles: map[string]string{"US1234567A": "Synthesis of X"}}
	p, store := newTestPipeline(t, searcher, fetcher)

	res := p.Run(context.Background(), "compound x")
	if !res.Success {
		t.Fatalf("run failed: %+v", res)
	}
	if res.PatentsFound != 2 {
		t.Fatalf("patents_found=%d, want 2 (original candidate count)", res.PatentsFound)
	}
	if res.PatentsVerified != 1 || len(res.VerifiedPatents) != 1 {
		t.Fatalf("verified=%d list=%d, want 1/1", res.PatentsVerified, len(res.VerifiedPatents))
	}
	file := store.Load("compound x")
	for _, rec := range file.VerifiedPatents {
		if rec.PatentID == "CN0000001A" {
			t.Fatal("dropped candidate leaked into the result file")
		}
	}
}

func TestRunLowSimilarityKeptUnverified(t *testing.T) {
	// Ratio("ab", "abcdef") is exactly 0.5, below the 0.8 threshold.
	searcher := &fakeSearcher{candidates: []CandidatePatent{
		{PatentID: "US1234567A", Title: "ab"},
	}}
	fetcher := &fakeFetcher{titles: map[string]string{"US1234567A": "abcdef"}}
	p, store := newTestPipeline(t, searcher, fetcher)

	res := p.Run(context.Background(), "compound x")
	if !res.Success || res.PatentsVerified != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	rec := res.VerifiedPatents[0]
	if rec.Verified {
		t.Fatal("record below threshold must not be marked verified")
	}
	if rec.SimilarityScore != 0.5 {
		t.Fatalf("similarity=%v, want 0.5", rec.SimilarityScore)
	}
	if rec.Title != "abcdef" {
		t.Fatalf("record must carry the actual title, got %q", rec.Title)
	}
	if len(store.Load("compound x").VerifiedPatents) != 1 {
		t.Fatal("below-threshold record must still be persisted")
	}
}

func TestRunAnnotatesNonEnglishTitles(t *testing.T) {
	searcher := &fakeSearcher{candidates: []CandidatePatent{
		{PatentID: "CN1A", Title: "Synthesis of X"},
	}}
	fetcher := &fakeFetcher{titles: map[string]string{"CN1A": "一种化合物的合成方法"}}
	p, _ := newTestPipeline(t, searcher, fetcher)

	res := p.Run(context.Background(), "compound x")
	if len(res.VerifiedPatents) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.VerifiedPatents[0].LanguageNote == "" {
		t.Fatal("expected language note on CJK title")
	}
}

func TestRunEmitsProgressEvents(t *testing.T) {
	searcher := &fakeSearcher{candidates: []CandidatePatent{
		{PatentID: "US1A", Title: "Synthesis of X"},
	}}
	fetcher := &fakeFetcher{titles: map[string]string{"US1A": "Synthesis of X"}}
	p, _ := newTestPipeline(t, searcher, fetcher)

	events := []string{}
	p.SetProgress(func(event, _ string) { events = append(events, event) })
	p.Run(context.Background(), "compound x")

	want := map[string]bool{"search_start": false, "candidates_found": false, "fetch_start": false, "verified": false}
	for _, e := range events {
		if _, ok := want[e]; ok {
			want[e] = true
		}
	}
	for e, seen := range want {
		if !seen {
			t.Fatalf("event %q not emitted (got %v)", e, events)
		}
	}
}

func TestRunValidateConfig(t *testing.T) {
	store := NewResultStore(t.TempDir())
	p := NewPipeline(nil, &fakeFetcher{}, store, Config{})
	if err := p.ValidateConfig(); err == nil {
		t.Fatal("expected error for missing searcher")
	}
	res := p.Run(context.Background(), "c")
	if res.Success || res.Error == "" {
		t.Fatalf("misconfigured pipeline must fail the run: %+v", res)
	}
}
