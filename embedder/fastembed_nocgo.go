//go:build !cgo

package embedder

import (
	"context"
	"fmt"
)

// FastEmbedConfig configures the local ONNX provider.
type FastEmbedConfig struct {
	Model     string
	CacheDir  string
	MaxLength int
}

// FastEmbed is unavailable without cgo.
type FastEmbed struct{}

// NewFastEmbed always fails in builds without cgo; use the tei provider.
func NewFastEmbed(FastEmbedConfig) (*FastEmbed, error) {
	return nil, fmt.Errorf("%w: fastembed requires cgo, use the tei provider", ErrUnavailable)
}

func (*FastEmbed) Embed(context.Context, []string) ([][]float32, error) {
	return nil, ErrUnavailable
}

func (*FastEmbed) Dimension() int { return 0 }

func (*FastEmbed) Name() string { return ProviderFastEmbed }

func (*FastEmbed) Close() error { return nil }
