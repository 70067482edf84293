// Package embedding 提供基于 Eino 的文本向量化客户端
package embedding

import (
	"context"
	"fmt"

	"slanglab-api/internal/config"
	apperrors "slanglab-api/pkg/errors"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

// NewEinoEmbedder 创建基于 Eino 的 Embedder
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required")
	}

	// 使用 Eino 的 OpenAI 适配器
	embedder, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Endpoint,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder: %w", err)
	}

	return embedder, nil
}

// Client 单文本向量化客户端，校验返回向量的维度
type Client struct {
	inner     embedding.Embedder
	dimension int
}

// NewClient 创建向量化客户端
func NewClient(ctx context.Context, cfg *config.EmbeddingConfig) (*Client, error) {
	inner, err := NewEinoEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{inner: inner, dimension: cfg.Dimension}, nil
}

// NewClientWith 使用给定的 Embedder 创建客户端
func NewClientWith(inner embedding.Embedder, dimension int) *Client {
	return &Client{inner: inner, dimension: dimension}
}

// Dimension 返回配置的向量维度
func (c *Client) Dimension() int {
	return c.dimension
}

// Embed 向量化单条文本
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.inner.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "embedding provider call failed")
	}
	if len(vectors) != 1 {
		return nil, apperrors.New(apperrors.CodeEmbeddingFailed, fmt.Sprintf("expected 1 embedding, got %d", len(vectors)))
	}
	if c.dimension > 0 && len(vectors[0]) != c.dimension {
		return nil, apperrors.New(apperrors.CodeDimensionMismatch,
			fmt.Sprintf("provider returned dimension %d, configured %d", len(vectors[0]), c.dimension))
	}

	vec := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		vec[i] = float32(v)
	}
	return vec, nil
}
