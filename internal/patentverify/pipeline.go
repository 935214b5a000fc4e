package patentverify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ProgressFn receives the pipeline's observability events. The CLI maps
// them to log lines; tests capture them directly.
type ProgressFn func(event, message string)

type CandidateSearcher interface {
	Search(ctx context.Context, compound string) ([]CandidatePatent, error)
	ModelName() string
}

type Fetcher interface {
	FetchTitle(ctx context.Context, patentID string) (string, error)
}

// Pipeline sequences search, per-candidate fetch+score, and incremental
// persistence for a single compound. Fully sequential by design: the result
// file has exactly one writer and Google Patents sees paced requests.
type Pipeline struct {
	searcher CandidateSearcher
	fetcher  Fetcher
	store    *ResultStore
	cfg      Config
	progress ProgressFn
}

func NewPipeline(searcher CandidateSearcher, fetcher Fetcher, store *ResultStore, cfg Config) *Pipeline {
	cfg.applyDefaults()
	return &Pipeline{searcher: searcher, fetcher: fetcher, store: store, cfg: cfg}
}

func (p *Pipeline) SetProgress(fn ProgressFn) { p.progress = fn }

func (p *Pipeline) ValidateConfig() error {
	if p.searcher == nil {
		return fmt.Errorf("searcher is required")
	}
	if p.fetcher == nil {
		return fmt.Errorf("fetcher is required")
	}
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	return nil
}

// Run never returns an error: every failure mode degrades to a RunResult
// with Success false and the cause in Message or Error, so a single bad
// compound cannot crash a caller.
func (p *Pipeline) Run(ctx context.Context, compound string) RunResult {
	res := RunResult{
		Compound:        compound,
		VerifiedPatents: []VerifiedPatent{},
		Metadata:        RunMetadata{StartedAt: time.Now()},
	}
	defer func() {
		res.Metadata.CompletedAt = time.Now()
		res.Metadata.DurationMS = res.Metadata.CompletedAt.Sub(res.Metadata.StartedAt).Milliseconds()
	}()

	if err := p.ValidateConfig(); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Metadata.Model = p.searcher.ModelName()

	p.emit("search_start", fmt.Sprintf("Searching patents for %q", compound))
	candidates, err := p.searcher.Search(ctx, compound)
	if err != nil {
		// Call and parse failures both degrade to the zero-candidate
		// terminal state; the run itself did not crash.
		candidates = nil
		res.Message = fmt.Sprintf("patent search failed: %v", err)
	}
	res.PatentsFound = len(candidates)
	if len(candidates) == 0 {
		if res.Message == "" {
			res.Message = "no patents found by search"
		}
		p.emit("no_candidates", res.Message)
		return res
	}
	p.emit("candidates_found", fmt.Sprintf("%d candidate patents", len(candidates)))

	for i, cand := range candidates {
		if ctx.Err() != nil {
			res.Error = ctx.Err().Error()
			return res
		}
		p.emit("fetch_start", fmt.Sprintf("Verifying %d/%d: %s", i+1, len(candidates), cand.PatentID))

		actual, err := p.fetcher.FetchTitle(ctx, cand.PatentID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				res.Error = err.Error()
				return res
			}
			// Unfetchable candidates are dropped, not recorded as failures.
			p.emit("skipped", fmt.Sprintf("%s: %v", cand.PatentID, err))
			continue
		}

		score := Ratio(cand.Title, actual)
		rec := VerifiedPatent{
			PatentID:        cand.PatentID,
			Title:           actual,
			Relevancy:       cand.Relevancy,
			SimilarityScore: score,
			Verified:        score >= p.cfg.SimilarityThreshold,
		}
		if ContainsCJK(actual) {
			rec.LanguageNote = "Non-English title - similarity may be affected by language"
		}
		if err := p.store.Append(compound, rec); err != nil {
			// Persistence loss is tolerable; the record stays in memory.
			log.Printf("patent-verify store_error patent_id=%s err=%q", rec.PatentID, err.Error())
			p.emit("store_error", fmt.Sprintf("%s: %v", rec.PatentID, err))
		}
		res.VerifiedPatents = append(res.VerifiedPatents, rec)

		if rec.Verified {
			p.emit("verified", fmt.Sprintf("%s similarity=%.3f", rec.PatentID, score))
		} else {
			p.emit("low_similarity", fmt.Sprintf("%s similarity=%.3f kept unverified", rec.PatentID, score))
		}

		if i < len(candidates)-1 && p.cfg.RequestDelay > 0 {
			if err := sleepCtx(ctx, p.cfg.RequestDelay); err != nil {
				res.Error = err.Error()
				res.PatentsVerified = len(res.VerifiedPatents)
				return res
			}
		}
	}

	res.PatentsVerified = len(res.VerifiedPatents)
	res.Success = true
	res.OutputFile = p.store.OutputPath(compound)
	return res
}

func (p *Pipeline) emit(event, message string) {
	if p.progress != nil {
		p.progress(event, message)
	}
}
