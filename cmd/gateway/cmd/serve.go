package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/bruinwatch/internal/gateway"
	"github.com/spf13/cobra"
)

// port はコマンドラインで指定されたリッスンポート。
var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "ゲートウェイを起動する",
	RunE:  runServe,
}

// runServe は設定を読み込んでゲートウェイを起動し、SIGINT/SIGTERMで停止する。
func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := gateway.LoadConfig(os.Getenv)
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	if port != "" {
		cfg.Port = port
	}
	if !cfg.Production() && os.Getenv("SESSION_SECRET") == "" {
		log.Printf("[Gateway] SESSION_SECRETが未設定のため開発用の秘密鍵を使用します")
	}
	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		log.Printf("[Gateway] ADMIN_EMAILまたはADMIN_PASSWORD_HASHが未設定のためログインできません")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := gateway.NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ゲートウェイの初期化に失敗: %w", err)
	}
	defer server.Close()

	log.Printf("[Gateway] ゲートウェイを起動します: :%s", cfg.Port)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("ゲートウェイの起動に失敗: %w", err)
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&port, "port", "", "リッスンポート（環境変数PORTより優先）")
	rootCmd.AddCommand(serveCmd)
}
