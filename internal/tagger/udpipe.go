package tagger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/nounclass/internal/logging"
	"github.com/ppiankov/nounclass/internal/model"
)

// UDPipeTagger sends text to a UDPipe 2 REST service and reads UD tags from
// the returned CoNLL-U
type UDPipeTagger struct {
	endpoint   string
	model      string
	chunkBytes int
	maxLen     int
	client     *http.Client
	logger     *zap.Logger
}

type udpipeResponse struct {
	Model  string `json:"model"`
	Result string `json:"result"`
}

// NewUDPipeTagger creates a UDPipe client. A nil client gets a default one
// with a two minute timeout.
func NewUDPipeTagger(cfg model.TaggerConfig, client *http.Client, logger *zap.Logger) *UDPipeTagger {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &UDPipeTagger{
		endpoint:   cfg.UDPipeURL,
		model:      cfg.UDPipeModel,
		chunkBytes: cfg.UDPipeChunk,
		maxLen:     cfg.MaxTextLength,
		client:     client,
		logger:     logging.OrNop(logger),
	}
}

// Name returns the backend name
func (u *UDPipeTagger) Name() string {
	return model.TaggerUDPipe
}

// Tag sends text in paragraph-aligned chunks and joins the tagged words
// into one document
func (u *UDPipeTagger) Tag(ctx context.Context, source, text string) (model.Document, error) {
	if err := checkLength(source, text, u.maxLen); err != nil {
		return model.Document{}, err
	}

	var words []string
	var tags []model.POS

	chunks := Chunk(text, u.chunkBytes)
	for i, chunk := range chunks {
		w, t, err := u.process(ctx, chunk)
		if err != nil {
			return model.Document{}, errors.Wrapf(err, "udpipe chunk %d/%d of %s", i+1, len(chunks), source)
		}
		words = append(words, w...)
		tags = append(tags, t...)

		u.logger.Debug("udpipe chunk tagged",
			zap.String(logging.FieldSource, source),
			zap.Int("chunk", i+1),
			zap.Int(logging.FieldTokens, len(w)))
	}

	return model.NewDocument(source, words, tags), nil
}

func (u *UDPipeTagger) process(ctx context.Context, text string) ([]string, []model.POS, error) {
	form := url.Values{}
	form.Set("model", u.model)
	form.Set("tokenizer", "")
	form.Set("tagger", "")
	form.Set("data", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, "request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, nil, errors.Newf("udpipe returned HTTP %d: %s", resp.StatusCode, msg)
	}

	var decoded udpipeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, nil, errors.Wrap(err, "decode udpipe response")
	}

	return ParseCoNLLU(strings.NewReader(decoded.Result))
}

// Chunk splits text into pieces of at most max bytes, cutting at paragraph
// breaks first, then line breaks, then spaces. A single word longer than
// max is cut at a rune boundary. max <= 0 returns the text whole.
func Chunk(text string, max int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if max <= 0 || len(text) <= max {
		return []string{text}
	}

	var chunks []string
	for len(text) > max {
		cut := lastBreak(text[:max+1])
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if strings.TrimSpace(text) != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// lastBreak finds where to end a chunk inside window. The break characters
// stay in the chunk that ends there.
func lastBreak(window string) int {
	limit := len(window) - 1
	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(window[:limit], sep); i > 0 {
			return i + len(sep)
		}
	}
	// No break: back off to a rune boundary
	cut := limit
	for cut > 1 && !isRuneStart(window[cut]) {
		cut--
	}
	return cut
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
