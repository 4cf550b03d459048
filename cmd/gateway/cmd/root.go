// Package cmd はゲートウェイのサブコマンドを定義する。
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "BruinWatchの管理画面を保護するゲートウェイ",
	Long: `BruinWatchの管理画面と管理APIへのリクエストを、署名付きセッションCookieで認可するゲートウェイ。
サブコマンドを省略した場合はserveと同じ動作をする。`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute はルートコマンドを実行する。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&port, "port", "", "リッスンポート（環境変数PORTより優先）")
}
