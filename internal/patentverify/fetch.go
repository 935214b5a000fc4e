package patentverify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ErrTitleNotFound is the definitive "this patent has no usable English
// title" outcome: a 404 on the /en page, a page without a title element,
// an implausible extracted title, or an exhausted retry budget.
var ErrTitleNotFound = errors.New("patent title not found")

const (
	fetchUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	fetchRetryDelay  = 1 * time.Second
	maxTitleChars    = 300
	maxTitleSentence = 2
)

type FetchConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	HTTPClient     *http.Client
}

// TitleFetcher resolves a patent identifier to the real title shown on the
// English rendering of its Google Patents page.
type TitleFetcher struct {
	cfg FetchConfig
}

func NewTitleFetcher(cfg FetchConfig) *TitleFetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = PatentsBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeoutSec * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = fetchRetryDelay
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &TitleFetcher{cfg: cfg}
}

func (f *TitleFetcher) patentURL(patentID string) string {
	return strings.TrimRight(f.cfg.BaseURL, "/") + "/patent/" + patentID + "/en"
}

// FetchTitle tries up to MaxRetries attempts. A 404 means the English page
// does not exist and ends the attempts immediately. A page that parses but
// yields no plausible title is a structural failure, not a transient one,
// and also ends the attempts. Everything else is retried after RetryDelay.
func (f *TitleFetcher) FetchTitle(ctx context.Context, patentID string) (string, error) {
	url := f.patentURL(patentID)
	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		title, retryable, err := f.fetchOnce(ctx, patentID, url)
		if err == nil {
			return title, nil
		}
		if !retryable {
			return "", err
		}
		log.Printf("patent-verify fetch_attempt_failed patent_id=%s attempt=%d err=%q", patentID, attempt, err.Error())
		if attempt < f.cfg.MaxRetries {
			if serr := sleepCtx(ctx, f.cfg.RetryDelay); serr != nil {
				return "", serr
			}
		}
	}
	return "", ErrTitleNotFound
}

func (f *TitleFetcher) fetchOnce(ctx context.Context, patentID, url string) (title string, retryable bool, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := f.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("fetch %s: %w", patentID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		log.Printf("patent-verify fetch_no_english_page patent_id=%s", patentID)
		return "", false, ErrTitleNotFound
	}
	if res.StatusCode >= 400 {
		return "", true, fmt.Errorf("fetch %s: status code: %d", patentID, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", true, fmt.Errorf("parse %s: %w", patentID, err)
	}

	if t := strings.TrimSpace(doc.Find("span[itemprop='title']").First().Text()); t != "" {
		if plausibleTitle(t) {
			return t, false, nil
		}
		log.Printf("patent-verify fetch_implausible_title patent_id=%s text=%q", patentID, clampForLog(t))
		return "", false, ErrTitleNotFound
	}

	if full := strings.TrimSpace(doc.Find("h1[itemprop='pageTitle']").First().Text()); full != "" {
		t := strings.TrimSuffix(full, " - Google Patents")
		t = strings.TrimSpace(strings.Replace(t, patentID+" - ", "", 1))
		if plausibleTitle(t) {
			return t, false, nil
		}
		log.Printf("patent-verify fetch_implausible_title patent_id=%s text=%q", patentID, clampForLog(t))
		return "", false, ErrTitleNotFound
	}

	log.Printf("patent-verify fetch_title_tag_missing patent_id=%s", patentID)
	return "", false, ErrTitleNotFound
}

// plausibleTitle guards against scraping the wrong page section: abstracts
// start with "Abstract", run long, and contain multiple sentences.
func plausibleTitle(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if strings.HasPrefix(strings.ToLower(t), "abstract") {
		return false
	}
	if utf8.RuneCountInString(t) > maxTitleChars {
		return false
	}
	sentences := strings.Count(t, ".") + strings.Count(t, "!") + strings.Count(t, "?")
	return sentences <= maxTitleSentence
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func clampForLog(s string) string {
	if len(s) <= 50 {
		return s
	}
	return s[:50]
}
