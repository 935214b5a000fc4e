package patentverify

import "time"

const (
	DefaultLLMModel            = "claude-sonnet-4-5"
	DefaultLLMTimeoutSec       = 3600
	DefaultMaxPatents          = 20
	DefaultSimilarityThreshold = 0.8
	DefaultRequestTimeoutSec   = 15
	DefaultRequestDelaySec     = 2
	DefaultMaxRetries          = 3
	DefaultResultsDir          = "results"

	PatentsBaseURL = "https://patents.google.com"
)

// CandidatePatent is a patent proposed by the LLM search, prior to
// verification. Title is the title the model claims the patent has.
type CandidatePatent struct {
	PatentID  string `json:"patent_id"`
	Title     string `json:"title"`
	Relevancy string `json:"relevancy"`
}

// VerifiedPatent is a candidate whose real title was fetched and scored.
// Title holds the actual scraped title, not the claimed one. Verified is
// true only when SimilarityScore met the configured threshold; records
// below the threshold are still kept.
type VerifiedPatent struct {
	PatentID        string  `json:"patent_id"`
	Title           string  `json:"title"`
	Relevancy       string  `json:"relevancy"`
	SimilarityScore float64 `json:"similarity_score"`
	Verified        bool    `json:"verified"`
	LanguageNote    string  `json:"language_note,omitempty"`
}

// ResultFile is the persisted per-compound result set. PatentID values are
// unique within a file.
type ResultFile struct {
	Compound        string           `json:"compound"`
	VerifiedPatents []VerifiedPatent `json:"verified_patents"`
}

type RunMetadata struct {
	Model       string    `json:"model"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMS  int64     `json:"duration_ms"`
}

// RunResult is the aggregate outcome of one compound run. PatentsFound is
// the raw candidate count from the search; PatentsVerified counts every
// candidate whose title was fetched and scored, including those below the
// similarity threshold.
type RunResult struct {
	Compound        string           `json:"compound"`
	PatentsFound    int              `json:"patents_found"`
	PatentsVerified int              `json:"patents_verified"`
	VerifiedPatents []VerifiedPatent `json:"verified_patents"`
	Success         bool             `json:"success"`
	Message         string           `json:"message,omitempty"`
	Error           string           `json:"error,omitempty"`
	OutputFile      string           `json:"output_file,omitempty"`
	Metadata        RunMetadata      `json:"metadata"`
}

// Config carries every tunable the pipeline and its components recognize.
// Zero values are replaced with the Default* constants by the constructors.
type Config struct {
	Model               string
	LLMTimeout          time.Duration
	MaxPatents          int
	SimilarityThreshold float64
	RequestTimeout      time.Duration
	RequestDelay        time.Duration
	MaxRetries          int
	ResultsDir          string
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultLLMModel
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = DefaultLLMTimeoutSec * time.Second
	}
	if c.MaxPatents <= 0 {
		c.MaxPatents = DefaultMaxPatents
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeoutSec * time.Second
	}
	if c.RequestDelay < 0 {
		c.RequestDelay = DefaultRequestDelaySec * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.ResultsDir == "" {
		c.ResultsDir = DefaultResultsDir
	}
}
