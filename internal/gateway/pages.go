package gateway

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/bruinwatch/pkg/middleware"
)

// templatesFS は画面のHTMLテンプレート。
//
//go:embed templates/*.html
var templatesFS embed.FS

// loadTemplates は埋め込みテンプレートをルーターに登録する。
func loadTemplates(router *gin.Engine) error {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("テンプレートの読み込みに失敗: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}

// handleLoginPage はログイン画面を返すハンドラを返す。
// ログイン済みの場合はGateがホームへリダイレクトするため、ここには未ログインのリクエストだけが届く。
func (s *Server) handleLoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.HTML(http.StatusOK, "login.html", gin.H{
			"AppName": s.cfg.AppName,
		})
	}
}

// handleDashboardPage はダッシュボード画面を返すハンドラを返す。
func (s *Server) handleDashboardPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.HTML(http.StatusOK, "dashboard.html", gin.H{
			"AppName": s.cfg.AppName,
			"Subject": middleware.GetSubject(c),
		})
	}
}
