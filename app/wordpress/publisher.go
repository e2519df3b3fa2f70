package wordpress

import (
	"cmp"
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
)

const duplicateSearchLimit = "5"

// Publisher creates posts at most once per source URL. Its term caches live
// as long as the Publisher, which is one run.
type Publisher struct {
	client        *Client
	defaultStatus string
	categories    *taxonomy
	tags          *taxonomy
}

func NewPublisher(client *Client, defaultStatus string) *Publisher {
	return &Publisher{
		client:        client,
		defaultStatus: cmp.Or(defaultStatus, DefaultStatus),
		categories:    newTaxonomy(client, "categories"),
		tags:          newTaxonomy(client, "tags"),
	}
}

func (p *Publisher) Run(ctx context.Context, params PublishParams) (*Result, error) {
	if params.Article == nil {
		return nil, fmt.Errorf("article is required")
	}

	if params.SourceURL != "" && p.isDuplicate(ctx, params.SourceURL) {
		slog.Warn("Skipping duplicate post", "title", params.Article.Headline, "source_url", params.SourceURL)
		return nil, nil
	}

	request := createPostRequest{
		Title:   params.Article.Headline,
		Content: composeContent(params.Article.Body, params.SourceURL),
		Status:  cmp.Or(params.Status, p.defaultStatus),
		Excerpt: params.Article.Excerpt,
	}

	if id, ok := p.categories.Resolve(ctx, params.Category); ok {
		request.Categories = []int64{id}
	}
	request.Tags = p.tags.ResolveAll(ctx, params.Tags)

	if params.Image != nil {
		mediaID, err := p.client.UploadMedia(ctx, params.Image)
		if err != nil {
			slog.Error("Media upload failed, publishing without featured image", "filename", params.Image.Filename, "error", err)
		} else {
			request.FeaturedMedia = mediaID
		}
	}

	slog.Info("Creating post", "title", request.Title, "status", request.Status)

	var created post
	if err := p.client.postJSON(ctx, "posts", request, &created); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("Post created", "post_id", created.ID, "url", created.Link)

	return &Result{
		PostID:  created.ID,
		PostURL: created.Link,
		Title:   request.Title,
	}, nil
}

// isDuplicate reports whether an existing post already links the source URL.
// Search errors count as no duplicate.
func (p *Publisher) isDuplicate(ctx context.Context, sourceURL string) bool {
	params := url.Values{
		"search":   {sourceURL},
		"status":   {"any"},
		"per_page": {duplicateSearchLimit},
	}

	var posts []post
	if err := p.client.get(ctx, "posts", params, &posts); err != nil {
		slog.Warn("Duplicate check failed", "source_url", sourceURL, "error", err)
		return false
	}

	forms := sourceURLForms(sourceURL)
	for _, existing := range posts {
		for _, form := range forms {
			if strings.Contains(existing.Content.Rendered, form) {
				slog.Info("Found existing post for source", "source_url", sourceURL, "post_id", existing.ID)
				return true
			}
		}
	}

	return false
}

// sourceURLForms lists the ways a URL can appear in rendered post HTML.
// WordPress renders an ampersand in attributes as &#038;.
func sourceURLForms(sourceURL string) []string {
	escaped := html.EscapeString(sourceURL)
	return []string{
		sourceURL,
		escaped,
		strings.ReplaceAll(escaped, "&amp;", "&#038;"),
	}
}

func composeContent(body, sourceURL string) string {
	if sourceURL == "" {
		return body
	}
	return body + fmt.Sprintf("\n\n<p><em>Source: <a href=\"%s\" target=\"_blank\" rel=\"noopener\">Original Article</a></em></p>", html.EscapeString(sourceURL))
}
