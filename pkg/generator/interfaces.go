package generator

import (
	"context"
	"io"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-sprite-forge/pkg/domain"
	"google.golang.org/genai"
)

// ContentGenerator は Gemini への生成リクエストを送る通信クライアントです。
// gemini.GenerativeModel はこのインターフェースを満たします。
type ContentGenerator interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// SpriteGenerator はセッション層が利用する統合窓口です。
type SpriteGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*ImageOutput, error)
}

// ImageCacher は、参照画像をキャッシュするためのインターフェースです。
type ImageCacher interface {
	// Get は、指定されたキーに紐づくアイテムを取得します。
	Get(key string) (any, bool)
	// Set は、指定されたキーと値、有効期限でアイテムを保存します。
	Set(key string, value any, d time.Duration)
}

// HTTPClient は、URLからデータを取得するためのインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ObjectReader は gs:// などのオブジェクトストレージから読み込むためのインターフェースです。
// remoteio.InputReader はこのインターフェースを満たします。
type ObjectReader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
