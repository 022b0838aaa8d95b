// Package output handles file naming and writing for adocpipe outputs.
// A single conversion writes to an explicit path or to a name derived from
// the source (e.g., guide.json, example_com_docs_intro.json).
// In --all mode, output paths mirror the input tree.
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

// WriteOnly writes output for a single source into OutputDir.
// Filename: the source base name for files, domain_path for URLs.
func (w *Writer) WriteOnly(source string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, FileName(source)+ext)
	if err := WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteAll writes output for --all mode, mirroring the source's position
// under root. Example: root/docs/intro.adoc → OutputDir/docs/intro.json
// URL sources mirror their path below the root URL's path.
func (w *Writer) WriteAll(root, source string, data []byte, ext string) (string, error) {
	rel, err := relative(root, source)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(w.OutputDir, trimExt(rel)+ext)
	if err := WriteFile(fullPath, data); err != nil {
		return "", err
	}
	return fullPath, nil
}

func relative(root, source string) (string, error) {
	ru, rerr := url.Parse(root)
	su, serr := url.Parse(source)
	if rerr == nil && serr == nil && ru.Host != "" && su.Host != "" {
		base := ru.Path
		if !strings.HasSuffix(base, "/") {
			base = base[:strings.LastIndex(base, "/")+1]
		}
		if su.Host != ru.Host || !strings.HasPrefix(su.Path, base) {
			return "", fmt.Errorf("%s is outside %s", source, root)
		}
		return filepath.FromSlash(strings.TrimPrefix(su.Path, base)), nil
	}

	rel, err := filepath.Rel(root, source)
	if err != nil {
		return "", fmt.Errorf("resolving %s against %s: %w", source, root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", source, root)
	}
	return rel, nil
}

// FileName derives a flat output name from a source path or URL.
// Example: https://example.com/docs/intro.adoc → example_com_docs_intro
func FileName(source string) string {
	parsed, err := url.Parse(source)
	if err != nil || parsed.Host == "" {
		name := trimExt(filepath.Base(source))
		if name == "" || name == "." || name == string(filepath.Separator) {
			return "document"
		}
		return name
	}

	parts := []string{sanitize(parsed.Host)}
	path := strings.Trim(trimExt(parsed.Path), "/")
	if path != "" {
		for _, seg := range strings.Split(path, "/") {
			parts = append(parts, sanitize(seg))
		}
	}
	return strings.Join(parts, "_")
}

func trimExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}

// sanitize replaces non-alphanumeric characters with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
