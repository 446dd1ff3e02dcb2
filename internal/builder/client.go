package builder

import (
	"context"
	"fmt"
	"sync"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	clientConfig := gemini.Config{
		APIKey: apiKey,
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// lazyAIClient は最初の生成リクエストで gemini クライアントを作ります。
// API キーがない場合は生成側が通信前に弾くため、クライアントは作られません。
// 初期化に失敗した場合は保持せず、次のリクエストで作り直します。
type lazyAIClient struct {
	apiKey string
	init   func(ctx context.Context, apiKey string) (gemini.GenerativeModel, error)

	mu     sync.Mutex
	client gemini.GenerativeModel
}

func newLazyAIClient(apiKey string) *lazyAIClient {
	return &lazyAIClient{apiKey: apiKey, init: InitializeAIClient}
}

func (c *lazyAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	client, err := c.get(ctx)
	if err != nil {
		return nil, err
	}
	return client.GenerateWithParts(ctx, model, parts, opts)
}

func (c *lazyAIClient) get(ctx context.Context) (gemini.GenerativeModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	client, err := c.init(ctx, c.apiKey)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}
