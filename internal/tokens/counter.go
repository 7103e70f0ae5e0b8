// Package tokens counts prompt and response tokens with tiktoken encodings
// and estimates what they would cost on each supported model.
package tokens

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/common-creation/tokencounter/internal/models"
)

// Counter counts tokens of text as tokenized for a model.
type Counter interface {
	Count(text string, model models.ID) (int, error)
}

// encodingFor maps the supported models onto their tiktoken encodings.
var encodingFor = map[models.ID]tokenizer.Encoding{
	models.GPT4oMini:    tokenizer.O200kBase,
	models.GPT4o:        tokenizer.O200kBase,
	models.GPT4Dot1Mini: tokenizer.O200kBase,
}

// TiktokenCounter is a Counter backed by tiktoken BPE codecs. Codecs are
// loaded lazily and cached per encoding.
type TiktokenCounter struct {
	mu     sync.Mutex
	codecs map[tokenizer.Encoding]tokenizer.Codec
}

// NewTiktokenCounter creates a counter with an empty codec cache
func NewTiktokenCounter() *TiktokenCounter {
	return &TiktokenCounter{
		codecs: make(map[tokenizer.Encoding]tokenizer.Codec),
	}
}

// Count returns the number of tokens in text. Unsupported models are
// counted as the fallback model.
func (c *TiktokenCounter) Count(text string, model models.ID) (int, error) {
	if text == "" {
		return 0, nil
	}

	codec, err := c.codecFor(models.Normalize(model))
	if err != nil {
		return 0, err
	}

	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("failed to encode text of length %d: %w", len(text), err)
	}
	return len(ids), nil
}

func (c *TiktokenCounter) codecFor(model models.ID) (tokenizer.Codec, error) {
	encoding, ok := encodingFor[model]
	if !ok {
		return nil, fmt.Errorf("no tokenizer encoding for model %s", model)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if codec, ok := c.codecs[encoding]; ok {
		return codec, nil
	}

	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer encoding %s for model %s: %w", encoding, model, err)
	}
	c.codecs[encoding] = codec
	return codec, nil
}
