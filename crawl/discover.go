// Package crawl provides source discovery for --all mode.
// A directory root is walked for AsciiDoc files; a URL root is crawled
// through its index pages for linked AsciiDoc documents. Discovery is kept
// separate from the conversion pipeline.
package crawl

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/gaurav-prasanna/adocpipe/core"
	"github.com/gaurav-prasanna/adocpipe/core/fetch"
)

// maxPages bounds how many index pages a URL crawl visits.
const maxPages = 100

// DiscoverAll finds every AsciiDoc source under root. root is a directory
// or an http(s) URL; an AsciiDoc URL is returned as the only source.
func DiscoverAll(ctx context.Context, root string, fetcher core.Fetcher) ([]string, error) {
	if fetch.IsURL(root) {
		if IsAsciiDoc(root) {
			return []string{root}, nil
		}
		return discoverFromLinks(ctx, root, fetcher)
	}
	return discoverFromDir(ctx, root)
}

// discoverFromDir walks root in lexical order, skipping hidden directories
// and partials.
func discoverFromDir(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	queue := NewQueue(filepath.Clean)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && IsHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsAsciiDoc(path) && !IsPartial(d.Name()) {
			queue.Add(path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return queue.All(), nil
}

// discoverFromLinks crawls index pages breadth-first. Links to AsciiDoc
// files are collected; links to other pages under the start directory are
// followed.
func discoverFromLinks(ctx context.Context, startURL string, fetcher core.Fetcher) ([]string, error) {
	base, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	pages := NewQueue(NormalizeURL)
	docs := NewQueue(NormalizeURL)
	pages.Add(NormalizeURL(startURL))

	for visited := 0; pages.HasNext() && visited < maxPages; visited++ {
		current := pages.Next()

		result, err := fetcher.Fetch(ctx, current)
		if err != nil {
			if current == NormalizeURL(startURL) {
				return nil, fmt.Errorf("fetching index: %w", err)
			}
			log.Warn().Err(err).Str("url", current).Msg("skipping index page")
			continue
		}

		links, err := extractLinks(result.Content, current)
		if err != nil {
			continue
		}

		for _, link := range links {
			if !IsUnder(link, base) {
				continue
			}
			switch {
			case IsAsciiDoc(link):
				docs.Add(NormalizeURL(link))
			case strings.HasSuffix(mustPath(link), "/"):
				pages.Add(NormalizeURL(link))
			}
		}
	}

	return docs.All(), nil
}

func mustPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}

// extractLinks extracts all href values from <a> tags, resolving relative URLs.
func extractLinks(html string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(baseURL)
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		if resolved := resolveURL(href, base); resolved != "" {
			links = append(links, resolved)
		}
	})

	return links, nil
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "#") || strings.HasPrefix(href, "?") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
