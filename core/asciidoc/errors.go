package asciidoc

import (
	"errors"

	"github.com/rs/zerolog/log"
)

// ErrInvalidEncoding is returned when the source is not valid UTF-8.
var ErrInvalidEncoding = errors.New("source is not valid UTF-8")

// warnUnterminated reports a delimited block left open at the end of input.
// The block is closed there and parsing continues.
func warnUnterminated(kind string, line int) {
	log.Warn().
		Str("stage", "parse").
		Str("block", kind).
		Int("line", line).
		Msg("unterminated block closed at end of input")
}
