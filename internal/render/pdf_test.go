package render

import (
	"strings"
	"testing"
)

func TestHTMLConvertsMarkdown(t *testing.T) {
	markdown := "# Patent Verification Report\n\n| Patent | Title |\n|---|---|\n| US1A | Synthesis of X |\n"
	doc, err := HTML(markdown)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	for _, want := range []string{
		"<!doctype html>",
		"<h1",
		"Patent Verification Report",
		"<table>",
		"Synthesis of X",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestHTMLPreservesNonASCII(t *testing.T) {
	doc, err := HTML("一种化合物的合成方法")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(doc, "一种化合物的合成方法") {
		t.Fatal("non-ASCII content lost")
	}
}
