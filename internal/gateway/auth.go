package gateway

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/bruinwatch/pkg/middleware"
	"github.com/nao1215/bruinwatch/pkg/session"
	"golang.org/x/crypto/bcrypt"
)

// loginRequest はログインAPIのリクエストボディ。
type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// dummyPasswordHash は管理者が未設定またはメールアドレスが一致しない場合の比較対象。
// 一致しない場合もbcryptの比較を行い、応答時間からメールアドレスの正否を推測させない。
var dummyPasswordHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("bruinwatch-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// handleLogin は管理者の資格情報を検証してセッションCookieを発行するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body."})
			return
		}

		email := strings.TrimSpace(req.Email)
		if !s.checkCredentials(email, req.Password) {
			s.recordAudit(c, AuditLoginFailed, email)
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid email or password."})
			return
		}

		token, sess, err := s.codec.Issue(s.cfg.AdminEmail)
		if err != nil {
			log.Printf("[Gateway] セッショントークンの発行に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
			return
		}

		s.setSessionCookie(c, token, sess.ExpiresAt)
		s.recordAudit(c, AuditLoginSucceeded, s.cfg.AdminEmail)
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// handleLogout はセッションCookieを破棄するハンドラを返す。
// 有効なセッションが無くても成功として扱う。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if subject := middleware.GetSubject(c); subject != "" {
			s.recordAudit(c, AuditLogout, subject)
		}

		s.clearSessionCookie(c)
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// checkCredentials はメールアドレスとパスワードが管理者のものと一致するかを返す。
// メールアドレスは大文字小文字を区別せず定数時間で比較し、パスワードは常にbcryptで比較する。
func (s *Server) checkCredentials(email, password string) bool {
	hash := []byte(s.cfg.AdminPasswordHash)
	configured := s.cfg.AdminEmail != "" && len(hash) > 0
	if !configured {
		hash = dummyPasswordHash()
	}

	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(email)),
		[]byte(strings.ToLower(s.cfg.AdminEmail)),
	) == 1
	passwordOK := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil

	return configured && emailOK && passwordOK
}

// setSessionCookie はセッショントークンをCookieに設定する。
func (s *Server) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookie はセッションCookieを空の値で即時失効させる。
func (s *Server) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: http.SameSiteStrictMode,
	})
}

// recordAudit は認証イベントを記録する。記録に失敗してもリクエストは失敗させない。
func (s *Server) recordAudit(c *gin.Context, kind AuditKind, email string) {
	if _, err := s.audit.Record(c.Request.Context(), kind, email, c.ClientIP()); err != nil {
		log.Printf("[Audit] 認証イベントの記録に失敗: kind=%s, error=%v", kind, err)
	}
}
