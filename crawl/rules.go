// Package crawl — filtering rules.
// Provides helpers to select AsciiDoc sources and normalize URLs during
// discovery.
package crawl

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// asciidocExtensions are the file extensions treated as AsciiDoc sources.
var asciidocExtensions = map[string]bool{
	".adoc":     true,
	".asciidoc": true,
	".asc":      true,
}

// IsAsciiDoc reports whether a path or URL names an AsciiDoc source.
func IsAsciiDoc(source string) bool {
	p := source
	if parsed, err := url.Parse(source); err == nil && parsed.Host != "" {
		p = parsed.Path
	}
	return asciidocExtensions[strings.ToLower(path.Ext(filepath.ToSlash(p)))]
}

// IsHidden reports whether a file or directory name is hidden, like .git.
func IsHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".."
}

// IsPartial reports whether a file is an include fragment by convention
// ("_attributes.adoc"), which is not a standalone document.
func IsPartial(name string) bool {
	return strings.HasPrefix(name, "_")
}

// IsSameDomain checks if the given URL belongs to the specified domain.
func IsSameDomain(rawURL string, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Host == domain
}

// IsUnder reports whether rawURL lies in the directory of base.
func IsUnder(rawURL string, base *url.URL) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host != base.Host {
		return false
	}
	return strings.HasPrefix(parsed.Path, dirOf(base.Path))
}

func dirOf(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p[:strings.LastIndex(p, "/")+1]
}

// NormalizeURL strips fragments and queries for deduplication.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.Fragment = ""
	parsed.RawQuery = ""
	return parsed.String()
}
