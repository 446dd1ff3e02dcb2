package builder

import (
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/go-sprite-forge/internal/config"
	"github.com/shouni/go-sprite-forge/pkg/generator"
	"github.com/shouni/go-sprite-forge/pkg/history"
	"github.com/shouni/go-sprite-forge/pkg/session"
)

// AppContext は、コマンド実行に必要な依存関係をまとめて保持します。
type AppContext struct {
	Config     *config.Config
	Generator  *generator.GeminiSpriteGenerator
	Session    *session.Session
	References *generator.ReferenceLoader
	Objects    *ObjectStore
}

// NewAppContext は設定から履歴ストア、生成エンジン、セッションを組み立てます。
func NewAppContext(cfg *config.Config) (*AppContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	storage, err := InitializeStorage(cfg)
	if err != nil {
		return nil, err
	}
	store, err := history.NewStore(storage, cfg.HistoryKey)
	if err != nil {
		return nil, fmt.Errorf("履歴ストアの初期化に失敗しました: %w", err)
	}

	gen, err := InitializeGenerator(cfg, newLazyAIClient(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	objects := newObjectStore()
	refs, err := InitializeReferenceLoader(cfg, httpkit.New(cfg.HTTPTimeout))
	if err != nil {
		return nil, err
	}
	refs.WithObjectReader(objects)

	sess, err := session.New(store, gen)
	if err != nil {
		return nil, fmt.Errorf("セッションの初期化に失敗しました: %w", err)
	}

	return &AppContext{
		Config:     cfg,
		Generator:  gen,
		Session:    sess,
		References: refs,
		Objects:    objects,
	}, nil
}

// InitializeGenerator は GeminiSpriteGenerator を初期化します。
func InitializeGenerator(cfg *config.Config, aiClient generator.ContentGenerator) (*generator.GeminiSpriteGenerator, error) {
	gen, err := generator.NewGeminiSpriteGenerator(aiClient, generator.Config{
		APIKey:    cfg.GeminiAPIKey,
		APIKeyEnv: config.APIKeyEnv,
		Model:     cfg.ImageModel,
	})
	if err != nil {
		return nil, fmt.Errorf("GeminiSpriteGeneratorの初期化に失敗しました: %w", err)
	}
	return gen, nil
}

// InitializeReferenceLoader は参照画像のダウンロード結果をキャッシュする ReferenceLoader を作ります。
func InitializeReferenceLoader(cfg *config.Config, httpClient generator.HTTPClient) (*generator.ReferenceLoader, error) {
	refCache := cache.New(cfg.ReferenceCacheTTL, 2*cfg.ReferenceCacheTTL)
	loader, err := generator.NewReferenceLoader(httpClient, refCache, cfg.ReferenceCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("ReferenceLoaderの初期化に失敗しました: %w", err)
	}
	return loader, nil
}

// InitializeStorage は履歴の保存先を作ります。Ephemeral の場合はプロセス内のメモリだけに保存します。
func InitializeStorage(cfg *config.Config) (history.Storage, error) {
	if cfg.Ephemeral {
		return history.NewCacheStorage(), nil
	}
	storage, err := history.NewFileStorage(cfg.HomeDir)
	if err != nil {
		return nil, err
	}
	return storage, nil
}
