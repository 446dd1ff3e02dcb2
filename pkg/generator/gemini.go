package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-sprite-forge/pkg/domain"
	"github.com/shouni/go-sprite-forge/pkg/prompts"
)

// Config は GeminiSpriteGenerator の設定です。
type Config struct {
	APIKey    string
	APIKeyEnv string // エラーメッセージに出す環境変数名
	Model     string
}

// GeminiSpriteGenerator はリクエストの組み立て、通信、レスポンス解析を一括で行います。
type GeminiSpriteGenerator struct {
	aiClient ContentGenerator
	cfg      Config
}

// NewGeminiSpriteGenerator は GeminiSpriteGenerator を初期化します。
// API キーの有無はここでは検証せず、Generate の呼び出し時に判定します。
func NewGeminiSpriteGenerator(aiClient ContentGenerator, cfg Config) (*GeminiSpriteGenerator, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (ContentGenerator) is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = DefaultAPIKeyEnv
	}
	return &GeminiSpriteGenerator{aiClient: aiClient, cfg: cfg}, nil
}

// Model は使用するモデル名を返します。
func (g *GeminiSpriteGenerator) Model() string {
	return g.cfg.Model
}

// CheckConfig は通信に必要な設定が揃っているかを確認します。通信は行いません。
func (g *GeminiSpriteGenerator) CheckConfig() error {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return &domain.ConfigurationError{Key: g.cfg.APIKeyEnv}
	}
	return nil
}

// Generate はスプライトを1枚生成します。リトライは行いません。
func (g *GeminiSpriteGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*ImageOutput, error) {
	if err := g.CheckConfig(); err != nil {
		return nil, err
	}

	payload, err := prompts.Build(req)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Geminiに画像生成をリクエストします",
		"model", g.cfg.Model,
		"style", req.Style,
		"type", req.Type,
		"reference", req.HasReference(),
		"parts", len(payload.Parts),
	)

	resp, err := g.aiClient.GenerateWithParts(ctx, g.cfg.Model, payload.Parts, gemini.GenerateOptions{
		AspectRatio: payload.AspectRatio,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Gemini API の呼び出しに失敗しました", "error", err)
		return nil, &domain.TransportError{Err: err}
	}
	if resp == nil {
		return nil, domain.ErrEmptyResponse
	}

	out, err := ExtractImage(resp.RawResponse)
	if err != nil {
		slog.WarnContext(ctx, "レスポンスから画像を取得できませんでした", "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "画像を受信しました", "mime_type", out.MimeType, "bytes", len(out.Data))
	return out, nil
}
