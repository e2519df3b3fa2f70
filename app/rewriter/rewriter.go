package rewriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	MinContentLength = 50
	MaxContentLength = 10000

	callInterval = 2 * time.Second
)

var (
	ErrContentTooShort = errors.New("content too short to rewrite")
	ErrAllModelsFailed = errors.New("all models failed")
)

// Article is a rewritten entry ready for publishing.
type Article struct {
	Headline string
	Excerpt  string
	Body     string
	Model    string
}

// Rewriter turns entry HTML into an AP-style article. Models are tried in
// order until one returns a usable response.
type Rewriter struct {
	models  []Model
	limiter *rate.Limiter
	policy  *bluemonday.Policy
}

func NewRewriter(models ...Model) *Rewriter {
	return &Rewriter{
		models:  models,
		limiter: rate.NewLimiter(rate.Every(callInterval), 1),
		policy:  bodyPolicy(),
	}
}

// WithCallInterval changes the minimum spacing between model calls. Zero or
// less disables pacing.
func (r *Rewriter) WithCallInterval(d time.Duration) *Rewriter {
	if d <= 0 {
		r.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		r.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
	return r
}

func bodyPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "b", "i", "blockquote", "ul", "ol", "li")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(false)
	return p
}

func (r *Rewriter) Run(ctx context.Context, contentHTML, originalTitle string, preserveTitle bool) (*Article, error) {
	text, err := PlainText(contentHTML)
	if err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(text) < MinContentLength {
		return nil, ErrContentTooShort
	}
	text = truncate(text, MaxContentLength)

	prompt := userPrompt(originalTitle, text)

	var lastErr error
	for _, model := range r.models {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		article, err := r.complete(ctx, model, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("Rewrite failed", "model", model.Name(), "error", err)
			lastErr = err
			continue
		}

		if preserveTitle {
			article.Headline = originalTitle
		}

		slog.Debug("Rewrite complete", "model", model.Name(), "headline", article.Headline)
		return article, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("%w: no models configured", ErrAllModelsFailed)
	}
	return nil, fmt.Errorf("%w: %w", ErrAllModelsFailed, lastErr)
}

func (r *Rewriter) complete(ctx context.Context, model Model, prompt string) (*Article, error) {
	raw, err := model.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	article, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	article.Body = strings.TrimSpace(r.policy.Sanitize(article.Body))
	if article.Body == "" {
		return nil, fmt.Errorf("response body is empty after sanitizing")
	}
	article.Model = model.Name()

	return article, nil
}

// PlainText strips markup and non-content elements, joining text nodes with
// single spaces.
func PlainText(contentHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse content HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, header, noscript").Remove()

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " "), nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
