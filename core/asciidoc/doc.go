// Package asciidoc is a block-level AsciiDoc parser.
//
// It reads normalized AsciiDoc source and produces a core.Document: the
// document header (title, author, revision, attribute entries) and a tree of
// core.Block values for sections, paragraphs, delimited blocks, lists,
// tables, admonitions, images and breaks. Inline markup is left untouched;
// attribute references are not substituted and macros other than block
// images are not expanded.
//
// Each call to Parse works on its own state, so a single Parser may be used
// from several goroutines.
package asciidoc
