package embedder

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// Hashing is a deterministic bag-of-words embedder: each lowercase token is
// hashed into one of Dimension buckets with a hash-derived sign. Texts that
// share words get similar vectors. It needs no model files and is used for
// tests and offline runs.
type Hashing struct {
	dim int
}

// NewHashing returns a hashing embedder; dim <= 0 defaults to 384.
func NewHashing(dim int) *Hashing {
	if dim <= 0 {
		dim = 384
	}
	return &Hashing{dim: dim}
}

func (h *Hashing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = h.embed(text)
	}
	return out, nil
}

func (h *Hashing) embed(text string) []float32 {
	v := make([]float32, h.dim)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		hs := fnv.New64a()
		_, _ = hs.Write([]byte(tok))
		sum := hs.Sum64()
		bucket := int(sum % uint64(h.dim))
		if sum>>63 == 1 {
			v[bucket]--
		} else {
			v[bucket]++
		}
	}
	return v
}

func (h *Hashing) Dimension() int { return h.dim }

func (h *Hashing) Name() string { return ProviderHashing }
