// Package news pulls the tech news feed from public feed-aggregation
// endpoints and GitHub release streams, with a fixed demo list as the
// fallback when every source fails.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/techtrail/techtrail/internal/config"
	"golang.org/x/oauth2"
)

// MaxItems caps the aggregated news list.
const MaxItems = 8

// perSource is how many items each source contributes before aggregation.
const perSource = 3

// Item is a single news entry.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Source      string `json:"source"`
	Date        string `json:"date"`
	URL         string `json:"url"`
}

// aggregatorDoc is the rss2json response shape.
type aggregatorDoc struct {
	Status string `json:"status"`
	Feed   struct {
		Title string `json:"title"`
	} `json:"feed"`
	Items []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Link        string `json:"link"`
		PubDate     string `json:"pubDate"`
	} `json:"items"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Fetcher aggregates news from the configured sources. Safe for
// concurrent use; a stale fetch never overwrites a newer one.
type Fetcher struct {
	sources []string
	repos   []string
	http    *http.Client
	gh      *github.Client

	mu          sync.Mutex
	items       []Item
	lastUpdated string
	demoMode    bool
	started     uint64 // generation of the newest initiated fetch
	applied     uint64 // generation of the fetch whose result is visible
}

// NewFetcher builds a Fetcher from the news config.
func NewFetcher(cfg config.NewsConfig) *Fetcher {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	var ghHTTP *http.Client
	if cfg.GitHubToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken})
		ghHTTP = oauth2.NewClient(context.Background(), ts)
	}
	f := &Fetcher{
		sources: cfg.Sources,
		repos:   cfg.GitHubRepos,
		http:    httpClient,
		gh:      github.NewClient(ghHTTP),
	}
	return f
}

// Latest returns the current news list, fetching once if nothing has been
// loaded yet.
func (f *Fetcher) Latest(ctx context.Context) []Item {
	f.mu.Lock()
	loaded := f.applied > 0
	items := append([]Item(nil), f.items...)
	f.mu.Unlock()
	if loaded {
		return items
	}
	return f.Refresh(ctx)
}

// LastUpdated reports when the visible list was fetched, or "demo" when
// the fallback list is showing.
func (f *Fetcher) LastUpdated() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.demoMode {
		return "demo"
	}
	return f.lastUpdated
}

// Refresh fetches all sources and swaps in the aggregated result.
// Last-initiated-wins: if a newer fetch completed while this one was in
// flight, this result is discarded.
func (f *Fetcher) Refresh(ctx context.Context) []Item {
	f.mu.Lock()
	f.started++
	gen := f.started
	f.mu.Unlock()

	items, ok := f.fetchAll(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen <= f.applied {
		// A later-initiated fetch already landed.
		return append([]Item(nil), f.items...)
	}
	f.applied = gen
	f.demoMode = !ok
	if ok {
		f.items = items
		f.lastUpdated = time.Now().Format("15:04:05")
	} else {
		f.items = DemoItems()
		f.lastUpdated = ""
	}
	return append([]Item(nil), f.items...)
}

// fetchAll tries every source, skipping failures, and reports whether
// anything real was fetched.
func (f *Fetcher) fetchAll(ctx context.Context) ([]Item, bool) {
	var all []Item
	for _, src := range f.sources {
		items, err := f.fetchAggregator(ctx, src)
		if err != nil {
			log.Printf("news: source skipped: %v", err)
			continue
		}
		all = append(all, items...)
	}
	for _, repo := range f.repos {
		items, err := f.fetchReleases(ctx, repo)
		if err != nil {
			log.Printf("news: github source %s skipped: %v", repo, err)
			continue
		}
		all = append(all, items...)
	}
	if len(all) == 0 {
		return nil, false
	}
	return dedupeByTitle(all, MaxItems), true
}

// fetchAggregator loads one rss2json-style endpoint.
func (f *Fetcher) fetchAggregator(ctx context.Context, url string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("news: build request: %w", err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news: fetch %s: status %d", url, resp.StatusCode)
	}

	var doc aggregatorDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("news: decode %s: %w", url, err)
	}

	source := doc.Feed.Title
	if source == "" {
		source = "Tech Source"
	}
	items := doc.Items
	if len(items) > perSource {
		items = items[:perSource]
	}
	out := make([]Item, 0, len(items))
	for i, it := range items {
		out = append(out, Item{
			ID:          fmt.Sprintf("%d-%d", time.Now().UnixMilli(), i),
			Title:       it.Title,
			Description: summarize(it.Description),
			Category:    Categorize(it.Title),
			Source:      source,
			Date:        formatPubDate(it.PubDate),
			URL:         it.Link,
		})
	}
	return out, nil
}

// fetchReleases turns a repo's latest releases into news items.
func (f *Fetcher) fetchReleases(ctx context.Context, repo string) ([]Item, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok {
		return nil, fmt.Errorf("news: bad repo %q", repo)
	}
	releases, _, err := f.gh.Repositories.ListReleases(ctx, owner, name,
		&github.ListOptions{PerPage: perSource})
	if err != nil {
		return nil, fmt.Errorf("news: list releases: %w", err)
	}
	out := make([]Item, 0, len(releases))
	for _, rel := range releases {
		title := rel.GetName()
		if title == "" {
			title = rel.GetTagName()
		}
		out = append(out, Item{
			ID:          fmt.Sprintf("gh-%d", rel.GetID()),
			Title:       name + " " + title,
			Description: summarize(rel.GetBody()),
			Category:    Categorize(name + " " + title),
			Source:      "GitHub Releases",
			Date:        rel.GetPublishedAt().Format("Jan 2"),
			URL:         rel.GetHTMLURL(),
		})
	}
	return out, nil
}

// summarize strips HTML tags and clamps a description to 120 characters.
func summarize(s string) string {
	s = strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
	if s == "" {
		return "Technology and development news"
	}
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}

// formatPubDate renders the aggregator's "2006-01-02 15:04:05" timestamps
// as a short day-month date, falling back to the raw string.
func formatPubDate(s string) string {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, time.RFC1123Z} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2")
		}
	}
	return s
}

// dedupeByTitle keeps the first occurrence of each title, capped at max.
func dedupeByTitle(items []Item, max int) []Item {
	seen := make(map[string]bool, len(items))
	out := make([]Item, 0, max)
	for _, it := range items {
		if seen[it.Title] {
			continue
		}
		seen[it.Title] = true
		out = append(out, it)
		if len(out) == max {
			break
		}
	}
	return out
}

// Categorize buckets a headline by keyword.
func Categorize(title string) string {
	t := strings.ToLower(title)
	switch {
	case containsAny(t, "react", "vue", "angular"):
		return "frontend"
	case containsAny(t, "node", "express", "backend"):
		return "backend"
	case containsAny(t, "typescript", "javascript", "python"):
		return "language"
	case containsAny(t, "docker", "kubernetes", "devops"):
		return "devops"
	case containsAny(t, "ai", "machine learning", "llm"):
		return "ai"
	case containsAny(t, "css", "tailwind", "style"):
		return "css"
	}
	return "general"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DemoItems is the built-in fallback list shown when every source fails.
func DemoItems() []Item {
	return []Item{
		{ID: "demo-1", Title: "React 19 Beta Released", Description: "Server components, actions and performance improvements land in the new React release", Category: "frontend", Source: "React Blog", Date: "2024", URL: "https://react.dev/blog/2024/04/25/react-19"},
		{ID: "demo-2", Title: "TypeScript 5.5: What's New", Description: "Improved type inference and new capabilities in the latest TypeScript update", Category: "language", Source: "TypeScript Blog", Date: "2024", URL: "https://devblogs.microsoft.com/typescript/announcing-typescript-5-5/"},
		{ID: "demo-3", Title: "Next.js 15 with React 19", Description: "React 19 integration brings better performance and new features to Next.js", Category: "frontend", Source: "Next.js Blog", Date: "2024", URL: "https://nextjs.org/blog/next-15"},
		{ID: "demo-4", Title: "AI in Web Development", Description: "How AI-powered tooling is changing the way modern web applications get built", Category: "ai", Source: "Tech Trends", Date: "2024", URL: "#"},
		{ID: "demo-5", Title: "Node.js 22: What's New", Description: "The latest Node.js release ships WebSocket API support and security improvements", Category: "backend", Source: "Node.js Blog", Date: "2024", URL: "https://nodejs.org/en/blog/release/v22.0.0"},
		{ID: "demo-6", Title: "Tailwind CSS v4 Announced", Description: "The next major version of the utility-first CSS framework promises to be faster", Category: "css", Source: "Tailwind CSS", Date: "2024", URL: "https://tailwindcss.com/blog/tailwindcss-v4"},
		{ID: "demo-7", Title: "Vue.js 3.4: Performance Improvements", Description: "Significantly faster rendering and new composition features", Category: "frontend", Source: "Vue.js Blog", Date: "2024", URL: "https://blog.vuejs.org/posts/vue-3-4"},
		{ID: "demo-8", Title: "Docker Desktop 5.0", Description: "A new Docker release with improved performance and feature support", Category: "devops", Source: "Docker Blog", Date: "2024", URL: "https://www.docker.com/blog/docker-desktop-5-0/"},
	}
}
