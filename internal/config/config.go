package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義
const (
	DefaultImageModel        = "gemini-2.5-flash-image"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultReferenceCacheTTL = 30 * time.Minute
	DefaultBackgroundColor   = "#202020"
	DefaultJPEGQuality       = 90
	DefaultRateLimit         = 10 * time.Second // 連続生成時のリクエスト間隔
	DefaultExportWorkers     = 4
	APIKeyEnv                = "GEMINI_API_KEY"
	homeDirName              = "sprite-forge"
)

// Config は環境変数から読み込むアプリケーション設定です。
type Config struct {
	GeminiAPIKey      string
	ImageModel        string
	HomeDir           string // 履歴の保存先ディレクトリ
	HistoryKey        string
	HTTPTimeout       time.Duration
	ReferenceCacheTTL time.Duration
	Ephemeral         bool // true なら履歴をディスクに保存しない
}

// LoadConfig は環境変数から設定を読み込みます。
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:      envutil.GetEnv(APIKeyEnv, ""),
		ImageModel:        envutil.GetEnv("GEMINI_IMAGE_MODEL", DefaultImageModel),
		HomeDir:           envutil.GetEnv("SPRITE_FORGE_HOME", defaultHomeDir()),
		HistoryKey:        envutil.GetEnv("SPRITE_FORGE_HISTORY_KEY", "pixelForgeHistory"),
		HTTPTimeout:       DefaultHTTPTimeout,
		ReferenceCacheTTL: DefaultReferenceCacheTTL,
	}
}

func defaultHomeDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, homeDirName)
	}
	return "." + homeDirName
}
