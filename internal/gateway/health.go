package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthCheckTimeout はバックエンドのヘルスチェックのタイムアウト。
const healthCheckTimeout = 3 * time.Second

// handleHealth はゲートウェイとバックエンドの稼働状況を返すハンドラを返す。
// バックエンドが応答しなくてもゲートウェイ自体は200を返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		backend := "ok"
		if err := s.healthClient.GetJSON(c.Request.Context(), "/health", nil); err != nil {
			backend = "unreachable"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "gateway",
			"backend": backend,
		})
	}
}
