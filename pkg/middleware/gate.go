package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/bruinwatch/pkg/session"
)

// SessionVerifier はセッショントークンを検証する。
// 失敗理由は返さず、セッションの有無だけを返す。
type SessionVerifier interface {
	Verify(raw string) (session.Session, bool)
}

// GateConfig はGateミドルウェアの設定。
type GateConfig struct {
	// Routes は保護対象ルートの設定。
	Routes Routes
	// Verifier はCookieのトークンを検証する。
	Verifier SessionVerifier
	// CookieName はセッションCookieの名前。空の場合は session.CookieName を使う。
	CookieName string
	// ServerOrigin はサーバー自身のオリジン。空の場合はリクエストから導出する。
	ServerOrigin string
	// Metrics は判定結果の集計先。nilの場合は集計しない。
	Metrics *DecisionMetrics
}

// Gate はOrigin検証、セッション検証、ルート判定を順に行うGinミドルウェアを返す。
// Origin検証で拒否された場合はセッション検証を行わない。
// セッション検証は1リクエストにつき1回だけ行い、その結果をログインページと保護ルートの判定に共用する。
func Gate(cfg GateConfig) gin.HandlerFunc {
	table := NewRouteTable(cfg.Routes)
	serverOrigin := NormalizeOrigin(cfg.ServerOrigin)
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = session.CookieName
	}

	return func(c *gin.Context) {
		if d := table.originDecision(c.Request, serverOrigin); d.Kind != KindAllow {
			cfg.Metrics.observe(d)
			respond(c, table, d)
			return
		}

		raw, _ := c.Cookie(cookieName)
		sess, ok := cfg.Verifier.Verify(raw)

		d := Decide(table.Classify(c.Request.URL.Path), ok)
		cfg.Metrics.observe(d)
		if d.Kind != KindAllow {
			respond(c, table, d)
			return
		}

		if ok {
			setSession(c, sess)
		}
		c.Next()
	}
}

// respond は通過以外の判定結果をレスポンスに変換してチェーンを中断する。
func respond(c *gin.Context, table *RouteTable, d Decision) {
	switch d.Kind {
	case KindRedirectLogin:
		c.Redirect(http.StatusTemporaryRedirect, table.LoginPath())
		c.Abort()
	case KindRedirectHome:
		c.Redirect(http.StatusTemporaryRedirect, table.HomePath())
		c.Abort()
	case KindReject:
		c.AbortWithStatusJSON(d.Status, gin.H{"detail": d.Detail})
	}
}
