package gateway

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// handleListAuditEvents は認証イベントを新しい順に返すハンドラを返す。
// クエリパラメータlimitで件数を指定できる（デフォルト50件、最大200件）。
func (s *Server) handleListAuditEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultAuditLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be a positive integer."})
				return
			}
			limit = n
		}

		events, err := s.audit.List(c.Request.Context(), limit)
		if err != nil {
			log.Printf("[Audit] 認証イベントの取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"events": events,
			"count":  len(events),
		})
	}
}
