// Package scrape implements the question source: it downloads the category
// listing pages of jeu-tu-preferes.fr and extracts every question link.
//
// Fetches run concurrently, one goroutine per category. A failed category is
// logged, counted in wyr_scrape_failures_total and reported to OnError, then
// contributes nothing; the other categories are unaffected. There is no retry.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/wyr-bot/internal/domain"
	"github.com/tbourn/wyr-bot/internal/observability"
)

// Selector matches the question links inside a category listing.
const Selector = "section#content p a"

// Category pairs a listing URL with the label shown on posted questions.
type Category struct {
	URL  string
	Name string
}

// DefaultCategories is the fixed list of listings the bot draws from.
var DefaultCategories = []Category{
	{URL: "https://www.jeu-tu-preferes.fr/lister/a-vie", Name: "À vie"},
	{URL: "https://www.jeu-tu-preferes.fr/lister/corps-humain", Name: "Corps humain"},
	{URL: "https://www.jeu-tu-preferes.fr/lister/situation", Name: "Situation"},
	{URL: "https://www.jeu-tu-preferes.fr/lister/actualite", Name: "Actualité"},
	{URL: "https://www.jeu-tu-preferes.fr/lister/sport", Name: "Sport"},
	{URL: "https://www.jeu-tu-preferes.fr/lister/marque", Name: "Marque"},
	{URL: "https://www.jeu-tu-preferes.fr/lister/personnage", Name: "Personnage"},
	{URL: "https://www.jeu-tu-preferes.fr/lister/serie-tv", Name: "Série TV"},
}

// FetchError reports a category page that could not be downloaded or parsed.
type FetchError struct {
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Report describes the outcome of one category fetch.
type Report struct {
	Category string
	Count    int
	Err      error
}

// Source loads the combined question pool.
type Source struct {
	Client     *http.Client
	Categories []Category
	UserAgent  string

	// OnError, when set, is called once per failed category.
	OnError func(ctx context.Context, err error)
}

// NewSource returns a Source over DefaultCategories with a bounded HTTP client.
func NewSource(timeout time.Duration, userAgent string) *Source {
	return &Source{
		Client:     &http.Client{Timeout: timeout},
		Categories: DefaultCategories,
		UserAgent:  userAgent,
	}
}

// Load returns every question of every reachable category, in category order.
// It never fails; an empty result means no category produced anything.
func (s *Source) Load(ctx context.Context) []domain.Question {
	qs, _ := s.LoadWithReport(ctx)
	return qs
}

// LoadWithReport is Load plus one Report per configured category.
func (s *Source) LoadWithReport(ctx context.Context) ([]domain.Question, []Report) {
	tr := otel.Tracer("scrape/Source")
	ctx, span := tr.Start(ctx, "Load",
		trace.WithAttributes(attribute.Int("categories", len(s.Categories))))
	defer span.End()

	parts := make([][]domain.Question, len(s.Categories))
	reports := make([]Report, len(s.Categories))

	var g errgroup.Group
	for i, c := range s.Categories {
		g.Go(func() error {
			qs, err := s.fetch(ctx, c)
			reports[i] = Report{Category: c.Name, Count: len(qs), Err: err}
			if err != nil {
				observability.ScrapeFailures.WithLabelValues(c.Name).Inc()
				log.Warn().Err(err).
					Str("category", c.Name).
					Str("url", c.URL).
					Msg("category fetch failed, skipping")
				if s.OnError != nil {
					s.OnError(ctx, err)
				}
				return nil
			}
			observability.ScrapedQuestions.WithLabelValues(c.Name).Set(float64(len(qs)))
			parts[i] = qs
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.Question
	for _, p := range parts {
		out = append(out, p...)
	}
	span.SetAttributes(attribute.Int("questions", len(out)))
	if len(out) == 0 {
		span.SetStatus(codes.Error, "empty question pool")
	}
	return out, reports
}

func (s *Source) fetch(ctx context.Context, c Category) ([]domain.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: c.URL, Err: err}
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: c.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: c.URL, Status: resp.StatusCode}
	}

	qs, err := Extract(resp.Body, c.Name)
	if err != nil {
		return nil, &FetchError{URL: c.URL, Err: err}
	}
	return qs, nil
}

// Extract parses an HTML listing and returns one Question per Selector match.
// Text is NFC-normalized and trimmed; empty matches are dropped.
func Extract(r io.Reader, category string) ([]domain.Question, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	var out []domain.Question
	doc.Find(Selector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(norm.NFC.String(sel.Text()))
		if text == "" {
			return
		}
		out = append(out, domain.Question{Text: text, Category: category})
	})
	return out, nil
}
