package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shouni/go-sprite-forge/pkg/domain"
)

var suggestForReference bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "選択できる画風とアセット種別を表示します。",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STYLE\tNAME")
		for _, s := range domain.ArtStyles() {
			fmt.Fprintf(tw, "%s\t%s\n", s.Slug(), s)
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "TYPE\tNAME")
		for _, t := range domain.SpriteTypes() {
			fmt.Fprintf(tw, "%s\t%s\n", t.Slug(), t)
		}
		return tw.Flush()
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "プロンプトの入力例を表示します。",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range domain.Suggestions(suggestForReference) {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestForReference, "reference", false, "参照画像を使う場合の候補（ポーズ・アクション）を表示します。")
}
