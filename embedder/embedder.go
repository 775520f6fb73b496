// Package embedder turns text into fixed-length vectors. The engine treats
// the model as opaque: it only relies on Embed returning one vector of
// Dimension() floats per input text.
package embedder

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("embedder: empty input")

	// ErrEmbeddingFailed indicates a provider failure.
	ErrEmbeddingFailed = errors.New("embedder: embedding failed")

	// ErrUnavailable indicates the provider cannot run in this build or
	// configuration.
	ErrUnavailable = errors.New("embedder: provider unavailable")
)

// Embedder encodes texts into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Name() string
}

// Provider names.
const (
	ProviderFastEmbed = "fastembed"
	ProviderTEI       = "tei"
	ProviderHashing   = "hashing"
)

// Config selects and configures a provider.
type Config struct {
	Provider  string
	Model     string
	CacheDir  string
	BaseURL   string
	Dimension int
}

// New builds the configured provider.
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case ProviderFastEmbed, "":
		fe, err := NewFastEmbed(FastEmbedConfig{Model: cfg.Model, CacheDir: cfg.CacheDir})
		if err != nil {
			return nil, err
		}
		return fe, nil
	case ProviderTEI:
		tei, err := NewTEI(TEIConfig{BaseURL: cfg.BaseURL, Model: cfg.Model, Dimension: cfg.Dimension})
		if err != nil {
			return nil, err
		}
		return tei, nil
	case ProviderHashing:
		return NewHashing(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrUnavailable, cfg.Provider)
	}
}

// EmbedOne encodes a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for 1 text", ErrEmbeddingFailed, len(vectors))
	}
	return vectors[0], nil
}

// Close releases provider resources when the provider holds any.
func Close(e Embedder) error {
	if c, ok := e.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
