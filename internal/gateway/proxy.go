package gateway

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/bruinwatch/pkg/httpclient"
	"github.com/nao1215/bruinwatch/pkg/middleware"
)

// handleProxy はバックエンドへリクエストを転送するハンドラを返す。
// Gateで認証済みのため、セッションの管理者をX-User-IDとして伝播する。
func (s *Server) handleProxy() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := httpclient.WithUserID(c.Request.Context(), middleware.GetSubject(c))

		var body io.Reader
		if c.Request.ContentLength != 0 {
			body = c.Request.Body
		}

		resp, err := s.backend.Forward(ctx, c.Request.Method, c.Param("path"),
			c.Request.URL.RawQuery, c.GetHeader("Content-Type"), body)
		if err != nil {
			log.Printf("[Gateway] プロキシエラー: path=%s, error=%v", c.Param("path"), err)
			c.JSON(http.StatusBadGateway, gin.H{"detail": "Backend unavailable."})
			return
		}
		defer resp.Body.Close()

		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/json"
		}
		c.DataFromReader(resp.StatusCode, resp.ContentLength, contentType, resp.Body, nil)
	}
}
