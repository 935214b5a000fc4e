package patentverify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// Searcher asks the model for candidate patents covering a compound. A run
// makes exactly one call; call and parse failures both degrade to an empty
// candidate list so the caller can reach its "no results" terminal state.
type Searcher struct {
	caller     LLMCaller
	maxPatents int
	timeout    time.Duration
}

func NewSearcher(caller LLMCaller, maxPatents int, timeout time.Duration) *Searcher {
	if maxPatents <= 0 {
		maxPatents = DefaultMaxPatents
	}
	if timeout <= 0 {
		timeout = DefaultLLMTimeoutSec * time.Second
	}
	return &Searcher{caller: caller, maxPatents: maxPatents, timeout: timeout}
}

func (s *Searcher) ModelName() string {
	if s == nil || s.caller == nil {
		return DefaultLLMModel
	}
	return s.caller.ModelName()
}

func (s *Searcher) Search(ctx context.Context, compound string) ([]CandidatePatent, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	log.Printf("patent-verify search_start compound=%q model=%s max_patents=%d", compound, s.caller.ModelName(), s.maxPatents)
	raw, err := s.caller.GenerateJSON(callCtx, buildSearchPrompt(compound, s.maxPatents))
	if err != nil {
		log.Printf("patent-verify search_call_error compound=%q elapsed_ms=%d err=%q", compound, time.Since(start).Milliseconds(), err.Error())
		return nil, fmt.Errorf("patent search call: %w", err)
	}

	clean := stripCodeFences(strings.TrimSpace(raw))
	var parsed struct {
		Patents []CandidatePatent `json:"patents"`
	}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		log.Printf("patent-verify search_parse_error compound=%q response_chars=%d err=%q", compound, len(clean), err.Error())
		return nil, fmt.Errorf("patent search response parse: %w", err)
	}

	out := make([]CandidatePatent, 0, len(parsed.Patents))
	for _, p := range parsed.Patents {
		p.PatentID = strings.TrimSpace(p.PatentID)
		p.Title = strings.TrimSpace(p.Title)
		if p.PatentID == "" {
			continue
		}
		out = append(out, p)
	}
	log.Printf("patent-verify search_done compound=%q candidates=%d elapsed_ms=%d", compound, len(out), time.Since(start).Milliseconds())
	return out, nil
}

func buildSearchPrompt(compound string, maxPatents int) string {
	var b strings.Builder
	b.WriteString("Return valid JSON only. No markdown fences, no commentary.\n\n")
	b.WriteString(`You are an expert at finding the most relevant patents given a chemical
compound, with their patent ids.

GUIDELINES:
- First collect the patents that specifically focus on synthesis of the
  given compound (a direct mention of the synthesis of the compound in the
  Title, Abstract or Claims).
- Then collect the remaining patents that spend a substantial part on the
  synthesis of the compound (for example as an intermediate).
- Consider patents worldwide: US, Chinese, Korean, Japanese, European or
  any other jurisdiction.
- Only include patents that are easy to find on the public internet, for
  example on Google Patents or Espacenet.
- Never invent a patent. If you cannot find any patent, return an empty
  list. Validate every result against a data source you actually saw; if
  you have no source for a result, drop it.

OUTPUT:
Respond with ONLY a single JSON object in this exact format (no other
text, no explanations, no markdown):
{"patents": [
  {"patent_id": "US1234567A", "title": "Synthesis of compound X", "relevancy": "High - Direct synthesis method described"},
  ...
]}

`)
	fmt.Fprintf(&b, "- List the top %d most relevant patents with their patent id, title and relevancy.\n", maxPatents)
	fmt.Fprintf(&b, "- If you find more than %d patents that fit the criteria, output them all.\n", maxPatents)
	b.WriteString("\nCOMPOUND: " + strings.TrimSpace(compound) + "\n")
	return b.String()
}
