package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-sprite-forge/internal/builder"
	"github.com/shouni/go-sprite-forge/internal/config"
)

var (
	cfg        *config.Config
	verbose    bool
	homeDir    string
	historyKey string
	ephemeral  bool
)

var rootCmd = &cobra.Command{
	Use:   "sprite-forge",
	Short: "自然文からゲーム用スプライトを生成し、履歴を管理します。",
	Long: `sprite-forge は Gemini の画像モデルでゲーム用スプライトを生成する CLI です。
画風とアセット種別を選んで生成し、結果はローカルの履歴に保存されます。
履歴の結果を参照画像にして、同じキャラクターの別ポーズを生成できます。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "デバッグログを出力します。")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "履歴の保存先ディレクトリ（既定: SPRITE_FORGE_HOME またはユーザー設定ディレクトリ）。")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "履歴をディスクに保存せず、このプロセスの間だけ保持します。")
	rootCmd.PersistentFlags().StringVar(&historyKey, "history-key", "", "履歴を保存するキー名（既定: SPRITE_FORGE_HISTORY_KEY または pixelForgeHistory）。")

	rootCmd.AddCommand(generateCmd, historyCmd, catalogCmd, suggestCmd)
}

// preRunAppE はロガーを設定し、環境変数から設定を読み込みます。
// API キーの検証は生成時に行うため、ここでは行いません。
func preRunAppE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg = config.LoadConfig()
	if homeDir != "" {
		cfg.HomeDir = homeDir
	}
	if historyKey != "" {
		cfg.HistoryKey = historyKey
	}
	cfg.Ephemeral = ephemeral
	return nil
}

// newAppContext はコマンドが使う依存関係を組み立てます。テストでは差し替えます。
var newAppContext = func() (*builder.AppContext, error) {
	return builder.NewAppContext(cfg)
}

// Execute は main.go から呼び出され、コマンドライン解析を開始します。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
