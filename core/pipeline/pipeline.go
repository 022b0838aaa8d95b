// Package pipeline runs normalize, parse and assemble for one document and
// folds every failure into a core.Result.
package pipeline

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gaurav-prasanna/adocpipe/core"
	"github.com/gaurav-prasanna/adocpipe/core/asciidoc"
	"github.com/gaurav-prasanna/adocpipe/core/assemble"
	"github.com/gaurav-prasanna/adocpipe/core/normalize"
)

// Pipeline converts AsciiDoc text into a Result. It keeps no per-document
// state, so one Pipeline can serve concurrent Run calls.
type Pipeline struct {
	normalizer core.Normalizer
	parser     core.Parser
	assembler  core.Assembler
}

// New creates a Pipeline from its stages.
func New(n core.Normalizer, p core.Parser, a core.Assembler) *Pipeline {
	return &Pipeline{normalizer: n, parser: p, assembler: a}
}

// Default creates a Pipeline with the built-in stages.
func Default() *Pipeline {
	return New(normalize.New(), asciidoc.New(), assemble.New())
}

// Run converts content. It never panics: parser errors, extraction errors
// and panics all become a failed Result carrying the error message.
func (p *Pipeline) Run(content string) (res core.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("conversion panicked")
			res = core.Failed(fmt.Sprint(r))
		}
	}()

	normalized := p.normalizer.Normalize(content)

	doc, err := p.parser.Parse(normalized)
	if err != nil {
		log.Warn().Err(err).Str("stage", "parse").Msg("conversion failed")
		return core.Failed(err.Error())
	}

	ir, err := p.assembler.Assemble(doc)
	if err != nil {
		log.Warn().Err(err).Str("stage", "assemble").Msg("conversion failed")
		return core.Failed(err.Error())
	}

	log.Debug().
		Int("blocks", len(ir.Blocks)).
		Dur("elapsed", time.Since(start)).
		Msg("conversion finished")
	return core.Succeeded(ir)
}
