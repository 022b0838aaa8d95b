// Package cmd — convert command.
// This is the main command that orchestrates the pipeline:
// fetch → normalize → parse → assemble → render → write.
//
// It handles flag validation, renderer selection, and single / --all modes.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/adocpipe/core"
	"github.com/gaurav-prasanna/adocpipe/core/asciidoc"
	"github.com/gaurav-prasanna/adocpipe/core/assemble"
	"github.com/gaurav-prasanna/adocpipe/core/fetch"
	"github.com/gaurav-prasanna/adocpipe/core/normalize"
	"github.com/gaurav-prasanna/adocpipe/core/output"
	"github.com/gaurav-prasanna/adocpipe/core/pipeline"
	"github.com/gaurav-prasanna/adocpipe/core/render"
	"github.com/gaurav-prasanna/adocpipe/crawl"
)

// Flag variables.
var (
	flagAll        bool
	flagJSON       bool
	flagPDF        bool
	flagMarkdown   bool
	flagEmbeddings bool
	flagPretty     bool
	flagModel      string
	flagChunkSize  int
	flagOutputDir  string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> [output]",
	Short: "Convert an AsciiDoc document to JSON (or Markdown, PDF, Embeddings)",
	Long: `Convert reads an AsciiDoc file or URL, repairs its header, parses it into
a block tree and writes the result. JSON is the default format: on success
it holds {"success":true,"data":...}; on failure {"success":false,"error":...}
is written instead and the command exits non-zero.

Without an output path the file is written to --output_dir, named after the
input. With --all the input is a directory (or index URL) and every AsciiDoc
file found under it is converted, mirroring the tree under --output_dir.

Examples:
  adocpipe convert guide.adoc guide.json
  adocpipe convert guide.adoc --markdown --output_dir ./out
  adocpipe convert https://example.com/docs/guide.adoc --pdf
  adocpipe convert ./docs --all --output_dir ./out --pretty
  adocpipe convert guide.adoc --embeddings --model nomic-embed-text`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	// Mode flags.
	convertCmd.Flags().BoolVar(&flagAll, "all", false, "Convert every AsciiDoc file under the input directory or index URL")

	// Output format flags (mutually exclusive).
	convertCmd.Flags().BoolVar(&flagJSON, "json", false, "Output the JSON result (default)")
	convertCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	convertCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	convertCmd.Flags().BoolVar(&flagEmbeddings, "embeddings", false, "Output embeddings")
	convertCmd.Flags().BoolVar(&flagPretty, "pretty", false, "Indent JSON output")

	// Embedding-specific flags.
	convertCmd.Flags().StringVar(&flagModel, "model", "", "Embedding model (required with --embeddings)")
	convertCmd.Flags().IntVar(&flagChunkSize, "chunk_size", 512, "Token chunk size for embeddings")

	// Output directory.
	convertCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

// job carries the shared stages of one convert run.
type job struct {
	fetcher  core.Fetcher
	pipeline *pipeline.Pipeline
	renderer core.Renderer
	failure  core.Renderer
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := validateFlags(args); err != nil {
		return err
	}

	renderer, err := selectRenderer()
	if err != nil {
		return err
	}
	p, err := buildPipeline()
	if err != nil {
		return err
	}

	j := &job{
		fetcher:  fetch.New(),
		pipeline: p,
		renderer: renderer,
		failure:  render.NewJSONRenderer(cfg.Output.Pretty),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if flagAll {
		return runAll(ctx, cmd, j, args[0])
	}
	return runOnly(ctx, cmd, j, args)
}

// runOnly converts a single source. A failed conversion still writes the
// failure JSON before returning an error.
func runOnly(ctx context.Context, cmd *cobra.Command, j *job, args []string) error {
	source := args[0]
	data, ext, convErr := j.process(ctx, source)

	var path string
	var err error
	if len(args) == 2 {
		path = args[1]
		err = output.WriteFile(path, data)
	} else {
		var writer *output.Writer
		if writer, err = output.New(cfg.Output.Dir); err == nil {
			path, err = writer.WriteOnly(source, data, ext)
		}
	}
	if err != nil {
		return err
	}

	if convErr != nil {
		return fmt.Errorf("converting %s: %w (details in %s)", source, convErr, path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path)
	return nil
}

// runAll discovers every source under root and converts each independently.
func runAll(ctx context.Context, cmd *cobra.Command, j *job, root string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	writer, err := output.New(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	fmt.Fprintf(out, "Discovering documents in %s...\n", root)
	sources, err := crawl.DiscoverAll(ctx, root, j.fetcher)
	if err != nil {
		return fmt.Errorf("discovering documents: %w", err)
	}
	fmt.Fprintf(out, "Found %d documents to process\n", len(sources))

	var errCount int
	for i, source := range sources {
		fmt.Fprintf(out, "[%d/%d] Processing %s\n", i+1, len(sources), source)

		data, ext, convErr := j.process(ctx, source)
		path, err := writer.WriteAll(root, source, data, ext)
		if err != nil {
			fmt.Fprintf(errOut, "  ✗ Write error: %v\n", err)
			errCount++
			continue
		}
		if convErr != nil {
			fmt.Fprintf(errOut, "  ✗ Error: %v\n", convErr)
			errCount++
			continue
		}
		fmt.Fprintf(out, "  ✓ Written: %s\n", path)
	}

	if errCount > 0 {
		return fmt.Errorf("%d/%d documents failed", errCount, len(sources))
	}
	return nil
}

// process runs one source through the pipeline. On failure it returns the
// failure JSON, its extension and the error.
func (j *job) process(ctx context.Context, source string) ([]byte, string, error) {
	meta := core.SourceMeta{
		Source:      source,
		ConvertedAt: time.Now().UTC().Format(time.RFC3339),
	}

	fetched, err := j.fetcher.Fetch(ctx, source)
	if err != nil {
		return j.fail(core.Failed(err.Error()), meta, fmt.Errorf("fetch: %w", err))
	}

	result := j.pipeline.Run(fetched.Content)
	if !result.Success {
		return j.fail(result, meta, fmt.Errorf("parse: %s", result.Error))
	}

	data, err := j.renderer.Render(result, meta)
	if err != nil {
		return j.fail(core.Failed(err.Error()), meta, fmt.Errorf("render: %w", err))
	}
	log.Debug().Str("source", source).Int("bytes", len(data)).Msg("rendered")
	return data, j.renderer.Extension(), nil
}

func (j *job) fail(result core.Result, meta core.SourceMeta, cause error) ([]byte, string, error) {
	data, err := j.failure.Render(result, meta)
	if err != nil {
		return nil, "", fmt.Errorf("%v (rendering failure: %w)", cause, err)
	}
	return data, j.failure.Extension(), cause
}

// buildPipeline wires the stages from the loaded configuration.
func buildPipeline() (*pipeline.Pipeline, error) {
	policy, err := normalize.CompilePolicy(cfg.Header.AuthorPatterns, cfg.Header.RevisionPatterns)
	if err != nil {
		return nil, fmt.Errorf("header config: %w", err)
	}
	noise, err := assemble.CompileOptions(cfg.Noise.MaxLength, cfg.Noise.Pattern)
	if err != nil {
		return nil, fmt.Errorf("noise config: %w", err)
	}
	attrs, err := cfg.Parser.DocumentAttributes()
	if err != nil {
		return nil, fmt.Errorf("parser config: %w", err)
	}
	parser := asciidoc.NewWithOptions(asciidoc.Options{
		SourceMap:  cfg.Parser.SourceMap,
		DocName:    cfg.Parser.DocName,
		Attributes: attrs,
	})
	return pipeline.New(normalize.NewWithPolicy(policy), parser, assemble.NewWithOptions(noise)), nil
}

// validateFlags checks that at most one output format is chosen and that
// the arguments fit the mode.
func validateFlags(args []string) error {
	formatCount := 0
	for _, set := range []bool{flagJSON, flagPDF, flagMarkdown, flagEmbeddings} {
		if set {
			formatCount++
		}
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}

	if flagAll && len(args) == 2 {
		return fmt.Errorf("--all writes under --output_dir; drop the output path")
	}

	if flagEmbeddings && cfg.Embeddings.Model == "" {
		return fmt.Errorf("--model is required when using --embeddings")
	}

	return nil
}

// selectRenderer creates the appropriate Renderer based on flags.
func selectRenderer() (core.Renderer, error) {
	switch {
	case flagMarkdown:
		return render.NewMarkdownRenderer(), nil
	case flagPDF:
		return render.NewPDFRenderer(), nil
	case flagEmbeddings:
		embedder := render.NewOllamaEmbedder(cfg.Embeddings.URL)
		return render.NewEmbeddingsRenderer(embedder, cfg.Embeddings.Model, cfg.Embeddings.ChunkSize), nil
	default:
		return render.NewJSONRenderer(cfg.Output.Pretty), nil
	}
}
