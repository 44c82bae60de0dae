// Package tagger turns raw text into a Document of Universal Dependencies
// tagged tokens. One raw text always yields one Document.
package tagger

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/nounclass/internal/logging"
	"github.com/ppiankov/nounclass/internal/model"
)

// ErrTextTooLong is returned for texts above the configured maximum length
var ErrTextTooLong = errors.New("text exceeds the maximum tagger input length")

// Tagger tokenizes and tags one raw text
type Tagger interface {
	Tag(ctx context.Context, source, text string) (model.Document, error)
	Name() string
}

// New builds the tagger selected by cfg.Backend. client is used by remote
// backends and may be nil.
func New(cfg model.TaggerConfig, client *http.Client, logger *zap.Logger) (Tagger, error) {
	logger = logging.OrNop(logger)

	switch cfg.Backend {
	case "", model.TaggerProse:
		return NewProseTagger(cfg.MaxTextLength), nil
	case model.TaggerUDPipe:
		return NewUDPipeTagger(cfg, client, logger), nil
	default:
		return nil, errors.Newf("unknown tagger backend %q", cfg.Backend)
	}
}

// checkLength rejects texts longer than max characters. max <= 0 disables
// the check.
func checkLength(source, text string, max int) error {
	if max <= 0 {
		return nil
	}
	if n := utf8.RuneCountInString(text); n > max {
		return errors.WithHint(
			errors.Wrapf(ErrTextTooLong, "source %q has %d characters (limit %d)", source, n, max),
			"raise tagger.max_text_length or split the source")
	}
	return nil
}
