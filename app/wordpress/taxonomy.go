package wordpress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/rss-press/app/httpclient"
)

var (
	slugInvalid   = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugSeparator = regexp.MustCompile(`[-\s]+`)
)

// Slugify lowercases text, strips accents and punctuation, and joins words with hyphens.
func Slugify(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}

	slug := strings.ToLower(folded)
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugSeparator.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// taxonomy resolves term names to ids for one endpoint (categories or tags)
// and remembers them for the lifetime of the Publisher.
type taxonomy struct {
	client   *Client
	endpoint string
	cache    map[string]int64
}

func newTaxonomy(client *Client, endpoint string) *taxonomy {
	return &taxonomy{
		client:   client,
		endpoint: endpoint,
		cache:    make(map[string]int64),
	}
}

// Resolve returns the term id, creating the term when the site has none
// with a matching slug. Failures are logged and reported as ok=false.
func (t *taxonomy) Resolve(ctx context.Context, name string) (int64, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}

	if id, ok := t.cache[name]; ok {
		return id, true
	}

	slug := Slugify(name)

	id, err := t.find(ctx, slug)
	if err != nil {
		slog.Warn("Term lookup failed", "taxonomy", t.endpoint, "name", name, "error", err)
	}
	if id == 0 {
		id, err = t.create(ctx, name, slug)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				slog.Warn("Term create conflict", "taxonomy", t.endpoint, "name", name)
			} else {
				slog.Error("Term create failed", "taxonomy", t.endpoint, "name", name, "error", err)
			}
			return 0, false
		}
		slog.Info("Term created", "taxonomy", t.endpoint, "name", name, "id", id)
	}

	t.cache[name] = id
	return id, true
}

// ResolveAll resolves names in order, skipping the ones that fail.
func (t *taxonomy) ResolveAll(ctx context.Context, names []string) []int64 {
	var ids []int64
	for _, name := range names {
		if id, ok := t.Resolve(ctx, name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (t *taxonomy) find(ctx context.Context, slug string) (int64, error) {
	var terms []term
	if err := t.client.get(ctx, t.endpoint, url.Values{"slug": {slug}}, &terms); err != nil {
		return 0, err
	}
	if len(terms) == 0 {
		return 0, nil
	}
	return terms[0].ID, nil
}

func (t *taxonomy) create(ctx context.Context, name, slug string) (int64, error) {
	var created term
	err := t.client.postJSON(ctx, t.endpoint, map[string]string{"name": name, "slug": slug}, &created)
	if httpclient.IsStatus(err, http.StatusBadRequest) {
		return 0, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("term create returned no id")
	}
	return created.ID, nil
}
