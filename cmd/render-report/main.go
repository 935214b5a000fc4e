package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joelkehle/patent-verify/internal/patentverify"
	"github.com/joelkehle/patent-verify/internal/render"
)

// render-report turns a saved run result JSON into a markdown, HTML or PDF
// report.
func main() {
	in := flag.String("in", "", "Path to a run result JSON file")
	out := flag.String("out", "report.pdf", "Output path (.md, .html or .pdf)")
	flag.Parse()
	if strings.TrimSpace(*in) == "" {
		log.Fatal("missing required flag -in")
	}

	blob, err := os.ReadFile(*in)
	if err != nil {
		log.Fatal(err)
	}
	var res patentverify.RunResult
	if err := json.Unmarshal(blob, &res); err != nil {
		log.Fatalf("parse %s: %v", *in, err)
	}

	markdown := patentverify.BuildReportMarkdown(res)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var payload []byte
	switch {
	case strings.HasSuffix(*out, ".md"):
		payload = []byte(markdown)
	case strings.HasSuffix(*out, ".html"):
		doc, err := render.HTML(markdown)
		if err != nil {
			log.Fatal(err)
		}
		payload = []byte(doc)
	default:
		pdf, err := render.PDF(ctx, markdown)
		if err != nil {
			log.Fatal(err)
		}
		payload = pdf
	}

	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("render-report wrote %s (%d bytes)", *out, len(payload))
}
