package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/nao1215/bruinwatch/pkg/session"
)

// sessionContextKey はGinコンテキストに検証済みセッションを格納するキー。
const sessionContextKey = "session"

// setSession は検証済みセッションをコンテキストに設定する。
func setSession(c *gin.Context, s session.Session) {
	c.Set(sessionContextKey, s)
}

// GetSession はGinコンテキストから検証済みセッションを取得する。
// Gateミドルウェアが事前に適用され、セッションが有効だった場合のみtrueを返す。
func GetSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}

// GetSubject はGinコンテキストから認証済み管理者の識別子を取得する。
// セッションが無い場合は空文字列を返す。
func GetSubject(c *gin.Context) string {
	s, ok := GetSession(c)
	if !ok {
		return ""
	}
	return s.Subject
}
