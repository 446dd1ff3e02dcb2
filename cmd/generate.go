package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/shouni/go-sprite-forge/internal/config"
	"github.com/shouni/go-sprite-forge/pkg/domain"
	"github.com/shouni/go-sprite-forge/pkg/session"
)

type generateOptions struct {
	prompt        string
	style         string
	spriteType    string
	background    string
	referenceID   string
	referenceFile string
	outputDir     string
	count         int
	interval      time.Duration
}

// submitter は生成リクエストを受け付けるセッションです。
type submitter interface {
	Submit(ctx context.Context, in session.Input) (*domain.GeneratedResult, error)
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "スプライトを1枚生成して履歴に追加します。",
	Long: `プロンプト、画風、アセット種別からスプライトを生成します。
--reference で履歴の結果を、--reference-file でファイル・URLを参照画像として渡すと、
同じキャラクターのまま指定したポーズやアクションだけを変えた画像を生成します。`,
	Args: cobra.ArbitraryArgs,
	RunE: generateCommand,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genOpts.prompt, "prompt", "p", "", "生成したいスプライトの説明。")
	f.StringVarP(&genOpts.style, "style", "s", "", "画風 (pixel-art, vector-flat, hand-drawn, isometric-3d, voxel, claymation, realistic-render)。")
	f.StringVarP(&genOpts.spriteType, "type", "t", "", "アセット種別 (single-character, sprite-sheet, icon, portrait, tileset)。")
	f.StringVarP(&genOpts.background, "background", "b", config.DefaultBackgroundColor, "背景色 (Black, White, #00FF00 など)。空なら白か黒。")
	f.StringVarP(&genOpts.referenceID, "reference", "r", "", "参照画像として使う履歴の ID。")
	f.StringVar(&genOpts.referenceFile, "reference-file", "", "参照画像のファイルパス、URL、または gs:// のオブジェクト。")
	f.StringVarP(&genOpts.outputDir, "output-dir", "o", "", "生成した画像を書き出すディレクトリ。")
	f.IntVarP(&genOpts.count, "count", "n", 1, "同じ条件で続けて生成する枚数。")
	f.DurationVar(&genOpts.interval, "interval", config.DefaultRateLimit, "連続生成時のリクエスト間隔。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	prompt := genOpts.prompt
	if prompt == "" {
		prompt = strings.Join(args, " ")
	}
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("プロンプトを --prompt か引数で指定してください: %w", domain.ErrEmptyPrompt)
	}

	in := session.Input{
		Prompt:          prompt,
		BackgroundColor: genOpts.background,
	}
	if genOpts.style != "" {
		style, err := domain.ParseArtStyle(genOpts.style)
		if err != nil {
			return err
		}
		in.Style = style
	}
	if genOpts.spriteType != "" {
		typ, err := domain.ParseSpriteType(genOpts.spriteType)
		if err != nil {
			return err
		}
		in.Type = typ
	}

	appCtx, err := newAppContext()
	if err != nil {
		return err
	}
	sess := appCtx.Session

	// 参照画像の取得は通信を伴うため、先に認証情報を確認する
	if err := appCtx.Generator.CheckConfig(); err != nil {
		return fmt.Errorf("設定エラー: %w", err)
	}

	if genOpts.referenceID != "" {
		if err := sess.SetReference(genOpts.referenceID); err != nil {
			return fmt.Errorf("参照画像を設定できませんでした: %w", err)
		}
	}
	if genOpts.referenceFile != "" {
		data, err := appCtx.References.Load(ctx, genOpts.referenceFile)
		if err != nil {
			return err
		}
		in.ReferenceImage = data
	}

	slog.Info("スプライトを生成します", "model", appCtx.Generator.Model(), "prompt", prompt, "style", in.Style, "type", in.Type, "count", genOpts.count)

	limiter := rate.NewLimiter(rate.Every(genOpts.interval), 1)
	results, err := submitRepeated(ctx, sess, in, genOpts.count, limiter)

	out := cmd.OutOrStdout()
	for _, result := range results {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", result.ID, result.Style.Slug(), result.Type.Slug(), result.Prompt)
		if genOpts.outputDir == "" {
			continue
		}
		path, exportErr := exportImage(ctx, *result, genOpts.outputDir, 0, appCtx.Objects)
		if exportErr != nil {
			return exportErr
		}
		fmt.Fprintln(out, path)
	}

	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			return fmt.Errorf("設定エラー: %w", err)
		}
		return fmt.Errorf("スプライトの生成に失敗しました: %w", err)
	}
	return nil
}

// submitRepeated は同じ入力で count 回続けて生成します。リクエストは limiter の間隔で送ります。
// 途中で失敗した場合は、それまでに成功した結果とエラーを返します。
func submitRepeated(ctx context.Context, s submitter, in session.Input, count int, limiter *rate.Limiter) ([]*domain.GeneratedResult, error) {
	count = max(count, 1)
	results := make([]*domain.GeneratedResult, 0, count)
	for i := 0; i < count; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return results, err
		}
		result, err := s.Submit(ctx, in)
		if err != nil {
			return results, err
		}
		slog.DebugContext(ctx, "生成が完了しました", "index", i+1, "id", result.ID)
		results = append(results, result)
	}
	return results, nil
}
