package wordpress

import (
	"errors"

	"github.com/lysyi3m/rss-press/app/images"
	"github.com/lysyi3m/rss-press/app/rewriter"
)

const DefaultStatus = "publish"

// ErrConflict is returned when the site rejects a term create, usually
// because a term with a different slug already owns the name.
var ErrConflict = errors.New("term already exists")

type PublishParams struct {
	Article   *rewriter.Article
	Category  string
	Tags      []string
	Image     *images.Image
	SourceURL string
	// Status overrides the site default when set.
	Status string
}

// Result describes a created post. A nil Result with a nil error means the
// post was skipped as a duplicate.
type Result struct {
	PostID  int64
	PostURL string
	Title   string
}

type rendered struct {
	Rendered string `json:"rendered"`
}

type post struct {
	ID      int64    `json:"id"`
	Link    string   `json:"link"`
	Title   rendered `json:"title"`
	Content rendered `json:"content"`
}

type term struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type media struct {
	ID int64 `json:"id"`
}

type createPostRequest struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Status        string  `json:"status"`
	Excerpt       string  `json:"excerpt,omitempty"`
	Categories    []int64 `json:"categories,omitempty"`
	Tags          []int64 `json:"tags,omitempty"`
	FeaturedMedia int64   `json:"featured_media,omitempty"`
}
