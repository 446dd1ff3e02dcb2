package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-sprite-forge/internal/builder"
	"github.com/shouni/go-sprite-forge/internal/config"
	"github.com/shouni/go-sprite-forge/pkg/domain"
	"github.com/shouni/go-sprite-forge/pkg/imgutil"
	"github.com/shouni/go-sprite-forge/pkg/session"
)

const (
	exportFilePrefix = "pixelforge-"
	gcsScheme        = "gs://"
)

var (
	exportDir     string
	exportQuality int
	exportAll     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "生成履歴を一覧・表示・削除・書き出しします。",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "履歴を新しい順に一覧表示します。",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := newAppContext()
		if err != nil {
			return err
		}
		return printHistory(cmd.OutOrStdout(), appCtx.Session.History())
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "結果の詳細を表示します。ID 省略時は最新の結果です。",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := newAppContext()
		if err != nil {
			return err
		}
		r, err := selectResult(appCtx.Session, args)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), r)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "履歴から結果を削除します。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := newAppContext()
		if err != nil {
			return err
		}
		deleted, err := appCtx.Session.Delete(args[0])
		if err != nil {
			return fmt.Errorf("履歴の削除に失敗しました: %w", err)
		}
		if !deleted {
			slog.Warn("指定された ID は履歴にありません", "id", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "結果の画像をファイルに書き出します。ID 省略時は最新の結果です。",
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if exportAll && len(args) > 0 {
			return fmt.Errorf("--all と ID は同時に指定できません")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := newAppContext()
		if err != nil {
			return err
		}
		quality := 0
		if cmd.Flags().Changed("jpeg-quality") {
			quality = exportQuality
		}

		items := appCtx.Session.History()
		if !exportAll {
			r, err := selectResult(appCtx.Session, args)
			if err != nil {
				return err
			}
			items = []domain.GeneratedResult{r}
		}

		paths, err := exportImages(cmd.Context(), items, exportDir, quality, appCtx.Objects)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	historyExportCmd.Flags().StringVarP(&exportDir, "output-dir", "o", ".", "書き出し先のディレクトリ（gs://bucket/prefix も可）。")
	historyExportCmd.Flags().BoolVar(&exportAll, "all", false, "履歴のすべての画像を書き出します。")
	historyExportCmd.Flags().IntVar(&exportQuality, "jpeg-quality", config.DefaultJPEGQuality, "指定すると JPEG に圧縮して書き出します (1-100)。")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyExportCmd)
}

// selectResult は引数の ID、なければ表示中の結果を返します。
func selectResult(sess *session.Session, args []string) (domain.GeneratedResult, error) {
	if len(args) == 0 {
		r, ok := sess.Active()
		if !ok {
			return domain.GeneratedResult{}, fmt.Errorf("履歴が空です: %w", domain.ErrNotFound)
		}
		return r, nil
	}
	if err := sess.SetActive(args[0]); err != nil {
		return domain.GeneratedResult{}, err
	}
	r, _ := sess.Active()
	return r, nil
}

func printHistory(w io.Writer, items []domain.GeneratedResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTYLE\tTYPE\tPROMPT")
	for _, r := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt().Format(time.DateTime), r.Style.Slug(), r.Type.Slug(), r.Prompt)
	}
	return tw.Flush()
}

func printResult(w io.Writer, r domain.GeneratedResult) error {
	data, mimeType, err := r.ImageBytes()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	fmt.Fprintf(tw, "Created:\t%s\n", r.CreatedAt().Format(time.RFC3339))
	fmt.Fprintf(tw, "Prompt:\t%s\n", r.Prompt)
	fmt.Fprintf(tw, "Style:\t%s\n", r.Style)
	fmt.Fprintf(tw, "Type:\t%s\n", r.Type)
	fmt.Fprintf(tw, "Image:\t%s (%d bytes)\n", mimeType, len(data))
	return tw.Flush()
}

// exportImages は複数の結果を並列に書き出し、履歴と同じ順でパスを返します。
func exportImages(ctx context.Context, items []domain.GeneratedResult, dir string, quality int, objects builder.ObjectWriter) ([]string, error) {
	paths := make([]string, len(items))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(config.DefaultExportWorkers)

	for i, r := range items {
		eg.Go(func() error {
			path, err := exportImage(egCtx, r, dir, quality, objects)
			if err != nil {
				return fmt.Errorf("%s: %w", r.ID, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// exportImage は結果の画像を pixelforge-<id>.<ext> として dir に書き出します。
// 画像は受信したバイト列のまま書き出し、拡張子は MIME タイプから決めます。
// quality が正なら JPEG に圧縮して .jpg で書き出します。dir が gs:// なら objects に書き出します。
func exportImage(ctx context.Context, r domain.GeneratedResult, dir string, quality int, objects builder.ObjectWriter) (string, error) {
	data, mimeType, err := r.ImageBytes()
	if err != nil {
		return "", fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	ext := extensionFor(mimeType)
	if quality > 0 {
		data, err = imgutil.CompressToJPEG(data, quality)
		if err != nil {
			return "", fmt.Errorf("JPEGへの圧縮に失敗しました: %w", err)
		}
		ext, mimeType = ".jpg", "image/jpeg"
	}
	name := exportFilePrefix + r.ID + ext

	if strings.HasPrefix(dir, gcsScheme) {
		if objects == nil {
			return "", fmt.Errorf("gs:// への書き出し先が設定されていません: %s", dir)
		}
		path := strings.TrimSuffix(dir, "/") + "/" + name
		if err := objects.Write(ctx, path, bytes.NewReader(data), mimeType); err != nil {
			return "", fmt.Errorf("画像のアップロードに失敗しました: %w", err)
		}
		slog.InfoContext(ctx, "画像を書き出しました", "path", path, "bytes", len(data))
		return path, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("画像の書き出しに失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "画像を書き出しました", "path", path, "bytes", len(data))
	return path, nil
}

// extensionFor は MIME タイプからファイルの拡張子を決めます。判定できない場合は .png です。
func extensionFor(mimeType string) string {
	switch mimeType {
	case domain.DefaultMimeType:
		return ".png"
	case "image/jpeg":
		return ".jpg"
	}
	extensions, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(extensions) == 0 {
		slog.Warn("MIMEタイプから拡張子を判定できないため .png を使います", "mime_type", mimeType)
		return ".png"
	}
	return extensions[0]
}
