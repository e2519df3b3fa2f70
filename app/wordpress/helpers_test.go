package wordpress

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/lysyi3m/rss-press/app/httpclient"
)

// fakeSite is an in-memory WordPress REST API.
type fakeSite struct {
	mu sync.Mutex

	posts      []post
	categories []term
	tags       []term
	nextID     int64

	requests      []string
	createdPosts  []map[string]any
	uploads       []string
	altTexts      map[int64]string
	failSearch    bool
	failMedia     bool
	failPosts     bool
	conflictTerms map[string]bool
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		nextID:        100,
		altTexts:      make(map[int64]string),
		conflictTerms: make(map[string]bool),
	}
}

func (s *fakeSite) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, pass, ok := r.BasicAuth(); !ok || user != "editor" || pass != "app-pass" {
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "rest_not_logged_in"})
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/wp-json/wp/v2/")
	s.requests = append(s.requests, r.Method+" "+path)

	switch {
	case r.Method == http.MethodGet && path == "posts":
		if s.failSearch {
			s.writeJSON(w, http.StatusBadGateway, map[string]string{"code": "bad_gateway"})
			return
		}
		s.writeJSON(w, http.StatusOK, s.posts)

	case r.Method == http.MethodPost && path == "posts":
		if s.failPosts {
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "db_error"})
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		s.createdPosts = append(s.createdPosts, body)
		s.nextID++
		created := post{
			ID:      s.nextID,
			Link:    fmt.Sprintf("https://site.example.com/?p=%d", s.nextID),
			Content: rendered{Rendered: fmt.Sprint(body["content"])},
		}
		s.posts = append(s.posts, created)
		s.writeJSON(w, http.StatusCreated, created)

	case r.Method == http.MethodGet && (path == "categories" || path == "tags"):
		slug := r.URL.Query().Get("slug")
		var found []term
		for _, t := range s.terms(path) {
			if t.Slug == slug {
				found = append(found, t)
			}
		}
		s.writeJSON(w, http.StatusOK, found)

	case r.Method == http.MethodPost && (path == "categories" || path == "tags"):
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if s.conflictTerms[body["name"]] {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"code": "term_exists"})
			return
		}
		s.nextID++
		created := term{ID: s.nextID, Name: body["name"], Slug: body["slug"]}
		if path == "categories" {
			s.categories = append(s.categories, created)
		} else {
			s.tags = append(s.tags, created)
		}
		s.writeJSON(w, http.StatusCreated, created)

	case r.Method == http.MethodPost && path == "media":
		if s.failMedia {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"code": "too_large"})
			return
		}
		io.Copy(io.Discard, r.Body)
		s.uploads = append(s.uploads, r.Header.Get("Content-Disposition")+"|"+r.Header.Get("Content-Type"))
		s.nextID++
		s.writeJSON(w, http.StatusCreated, media{ID: s.nextID})

	case r.Method == http.MethodPost && strings.HasPrefix(path, "media/"):
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		var id int64
		fmt.Sscanf(strings.TrimPrefix(path, "media/"), "%d", &id)
		s.altTexts[id] = body["alt_text"]
		s.writeJSON(w, http.StatusOK, media{ID: id})

	default:
		s.writeJSON(w, http.StatusNotFound, map[string]string{"code": "rest_no_route"})
	}
}

func (s *fakeSite) terms(path string) []term {
	if path == "categories" {
		return s.categories
	}
	return s.tags
}

func (s *fakeSite) count(request string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, r := range s.requests {
		if r == request {
			n++
		}
	}
	return n
}

func newTestPublisher(t *testing.T, site *fakeSite) *Publisher {
	t.Helper()

	server := httptest.NewServer(site)
	t.Cleanup(server.Close)

	client := NewClient(httpclient.New(5*time.Second, "rss-press-test", 0), server.URL+"/", "editor", "app-pass")
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	return NewPublisher(client, "")
}
