package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joelkehle/patent-verify/internal/patentverify"
)

func main() {
	_ = godotenv.Load()

	report := flag.Bool("report", false, "Print a markdown report after the run")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: patent-verify [-report] '<compound_name>'")
		fmt.Fprintln(os.Stderr, "Example: patent-verify '3-(trifluoromethyl)pyridine-4-carboxamide'")
		os.Exit(1)
	}
	compound := strings.TrimSpace(flag.Arg(0))
	if compound == "" {
		log.Fatal("compound name must not be empty")
	}

	cfg := patentverify.Config{
		Model:               strings.TrimSpace(os.Getenv("PATENT_VERIFY_MODEL")),
		LLMTimeout:          envSeconds("PATENT_VERIFY_LLM_TIMEOUT_SEC", patentverify.DefaultLLMTimeoutSec),
		MaxPatents:          envInt("PATENT_VERIFY_MAX_PATENTS", patentverify.DefaultMaxPatents),
		SimilarityThreshold: envFloat("PATENT_VERIFY_THRESHOLD", patentverify.DefaultSimilarityThreshold),
		RequestTimeout:      envSeconds("PATENT_VERIFY_REQUEST_TIMEOUT_SEC", patentverify.DefaultRequestTimeoutSec),
		RequestDelay:        envSeconds("PATENT_VERIFY_REQUEST_DELAY_SEC", patentverify.DefaultRequestDelaySec),
		MaxRetries:          envInt("PATENT_VERIFY_MAX_RETRIES", patentverify.DefaultMaxRetries),
		ResultsDir:          envString("PATENT_VERIFY_RESULTS_DIR", patentverify.DefaultResultsDir),
	}

	// Credential check happens before any network activity.
	caller, err := patentverify.NewAnthropicCallerFromEnv(cfg.Model)
	if err != nil {
		log.Fatal(err)
	}

	searcher := patentverify.NewSearcher(caller, cfg.MaxPatents, cfg.LLMTimeout)
	fetcher := patentverify.NewTitleFetcher(patentverify.FetchConfig{
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
	})
	store := patentverify.NewResultStore(cfg.ResultsDir)
	pipeline := patentverify.NewPipeline(searcher, fetcher, store, cfg)
	if err := pipeline.ValidateConfig(); err != nil {
		log.Fatal(err)
	}
	pipeline.SetProgress(func(event, message string) {
		log.Printf("patent-verify %s %s", event, message)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("patent-verify run_start compound=%q model=%s threshold=%.2f max_patents=%d",
		compound, searcher.ModelName(), cfg.SimilarityThreshold, cfg.MaxPatents)
	res := pipeline.Run(ctx, compound)
	recordHistory(cfg.ResultsDir, res)

	printSummary(res)
	if *report {
		fmt.Println(patentverify.BuildReportMarkdown(res))
	}
	if !res.Success {
		os.Exit(1)
	}
}

func printSummary(res patentverify.RunResult) {
	fmt.Printf("Compound:         %s\n", res.Compound)
	fmt.Printf("Patents found:    %d\n", res.PatentsFound)
	fmt.Printf("Patents verified: %d\n", res.PatentsVerified)
	if res.OutputFile != "" {
		fmt.Printf("Results saved to: %s\n", res.OutputFile)
	}
	for i, p := range res.VerifiedPatents {
		fmt.Printf("  %d. %s  similarity=%.3f verified=%t\n", i+1, p.PatentID, p.SimilarityScore, p.Verified)
		fmt.Printf("     %s\n", p.Title)
	}
	if !res.Success {
		reason := res.Error
		if reason == "" {
			reason = res.Message
		}
		fmt.Printf("Run failed: %s\n", reason)
	}
}

func recordHistory(resultsDir string, res patentverify.RunResult) {
	// Setting PATENT_VERIFY_HISTORY_DB to an empty value disables history.
	dbPath := filepath.Join(resultsDir, "history.db")
	if v, ok := os.LookupEnv("PATENT_VERIFY_HISTORY_DB"); ok {
		dbPath = strings.TrimSpace(v)
	}
	if dbPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Printf("patent-verify history_error err=%q", err.Error())
		return
	}
	history, err := patentverify.OpenRunHistory(dbPath)
	if err != nil {
		log.Printf("patent-verify history_error err=%q", err.Error())
		return
	}
	defer history.Close()
	if err := history.Record(res); err != nil {
		log.Printf("patent-verify history_error err=%q", err.Error())
	}
}

func envString(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || f > 1 {
		return fallback
	}
	return f
}

func envSeconds(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Second
}
