package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shouni/go-sprite-forge/pkg/domain"
	"github.com/shouni/go-sprite-forge/pkg/imgutil"
)

// ReferenceLoader は履歴以外の参照画像（ローカルファイル、URL、data URI）を読み込み、
// リクエストに添付できる PNG バイト列に揃えます。
type ReferenceLoader struct {
	httpClient HTTPClient
	objects    ObjectReader
	cache      ImageCacher
	expiration time.Duration
}

// WithObjectReader は gs:// の参照画像を読むためのリーダーを設定します。
func (l *ReferenceLoader) WithObjectReader(r ObjectReader) *ReferenceLoader {
	l.objects = r
	return l
}

// NewReferenceLoader は依存関係を注入して ReferenceLoader を初期化します。
func NewReferenceLoader(httpClient HTTPClient, cache ImageCacher, cacheTTL time.Duration) (*ReferenceLoader, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	// cache は nil を許容（キャッシュなし動作）
	if cacheTTL <= 0 {
		cacheTTL = DefaultReferenceTTL
	}

	return &ReferenceLoader{
		httpClient: httpClient,
		cache:      cache,
		expiration: cacheTTL,
	}, nil
}

// Load は参照元から画像を読み込み、PNG に変換して返します。
func (l *ReferenceLoader) Load(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("reference source is empty")
	}

	cacheKey := cacheKeyReference + src
	if l.cache != nil && (isRemoteURL(src) || isObjectURL(src)) {
		if val, ok := l.cache.Get(cacheKey); ok {
			if data, ok := val.([]byte); ok {
				slog.DebugContext(ctx, "参照画像をキャッシュから取得しました", "src", src)
				return data, nil
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "src", src, "type", fmt.Sprintf("%T", val))
		}
	}

	raw, err := l.fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	png, err := imgutil.ToPNG(raw)
	if err != nil {
		return nil, fmt.Errorf("参照画像を PNG に変換できませんでした: %w", err)
	}

	if l.cache != nil && (isRemoteURL(src) || isObjectURL(src)) {
		l.cache.Set(cacheKey, png, l.expiration)
	}
	return png, nil
}

func (l *ReferenceLoader) fetch(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		data, _, err := domain.DecodeDataURI(src)
		return data, err
	case isObjectURL(src):
		if l.objects == nil {
			return nil, fmt.Errorf("オブジェクトストレージのリーダーが設定されていません: %s", src)
		}
		rc, err := l.objects.Open(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("参照画像オブジェクトを開けませんでした: %w", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("参照画像オブジェクトの読み込みに失敗しました: %w", err)
		}
		return data, nil
	case isRemoteURL(src):
		if safe, err := IsSafeURL(src); err != nil || !safe {
			return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
		}
		data, err := l.httpClient.FetchBytes(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("参照画像のダウンロードに失敗しました: %w", err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("参照画像ファイルの読み込みに失敗しました: %w", err)
		}
		return data, nil
	}
}
