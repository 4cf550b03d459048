package middleware

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/bruinwatch/pkg/session"
)

// TestIsStateChanging はIsStateChangingを検証する。
func TestIsStateChanging(t *testing.T) {
	t.Parallel()

	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, "delete"} {
		if !IsStateChanging(m) {
			t.Errorf("IsStateChanging(%q) = false, want true", m)
		}
	}
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace} {
		if IsStateChanging(m) {
			t.Errorf("IsStateChanging(%q) = true, want false", m)
		}
	}
}

// TestCheckOrigin はRouteTable.CheckOriginを検証する。
func TestCheckOrigin(t *testing.T) {
	t.Parallel()

	table := NewRouteTable(DefaultRoutes())
	const self = "https://app.example"

	tests := []struct {
		name   string
		method string
		path   string
		origin string
		want   Decision
	}{
		{name: "異なるOriginからのDELETEは拒否", method: http.MethodDelete, path: "/api/backend/notifiers/abc", origin: "https://evil.example", want: RejectInvalidOrigin},
		{name: "異なるOriginからのPOSTは拒否", method: http.MethodPost, path: "/api/auth/login", origin: "https://evil.example", want: RejectInvalidOrigin},
		{name: "異なるOriginからのPATCHは拒否", method: http.MethodPatch, path: "/api/backend/notifiers/abc", origin: "http://app.example", want: RejectInvalidOrigin},
		{name: "ポート違いは別オリジン", method: http.MethodPut, path: "/api/backend/notifiers/abc", origin: "https://app.example:8443", want: RejectInvalidOrigin},
		{name: "nullオリジンは拒否", method: http.MethodPost, path: "/api/auth/logout", origin: "null", want: RejectInvalidOrigin},
		{name: "同一Originは許可", method: http.MethodPost, path: "/api/backend/notifiers", origin: self, want: Allow},
		{name: "大文字のホストは同一オリジンとして許可", method: http.MethodPost, path: "/api/backend/notifiers", origin: "https://APP.example", want: Allow},
		{name: "既定ポートの明示は同一オリジンとして許可", method: http.MethodDelete, path: "/api/backend/notifiers/abc", origin: "https://app.example:443", want: Allow},
		{name: "大文字のスキームは同一オリジンとして許可", method: http.MethodPatch, path: "/api/backend/notifiers/abc", origin: "HTTPS://app.example", want: Allow},
		{name: "Originヘッダー無しは許可", method: http.MethodDelete, path: "/api/backend/notifiers/abc", origin: "", want: Allow},
		{name: "GETはOrigin不一致でも許可", method: http.MethodGet, path: "/api/backend/notifiers", origin: "https://evil.example", want: Allow},
		{name: "HEADはOrigin不一致でも許可", method: http.MethodHead, path: "/api/backend/notifiers", origin: "https://evil.example", want: Allow},
		{name: "OPTIONSはOrigin不一致でも許可", method: http.MethodOptions, path: "/api/backend/notifiers", origin: "https://evil.example", want: Allow},
		{name: "API名前空間外は許可", method: http.MethodPost, path: "/login", origin: "https://evil.example", want: Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := table.CheckOrigin(tt.method, tt.path, tt.origin, self); got != tt.want {
				t.Errorf("CheckOrigin() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestNormalizeOrigin はNormalizeOriginを検証する。
func TestNormalizeOrigin(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                          "",
		"https://app.example":       "https://app.example",
		"https://app.example/":      "https://app.example",
		"HTTPS://App.Example":       "https://app.example",
		"https://app.example:443":   "https://app.example",
		"http://app.example:80":     "http://app.example",
		"http://localhost:8080":     "http://localhost:8080",
		"https://app.example/login": "https://app.example",
		"http://[::1]:8080":         "http://[::1]:8080",
		"not a url/":                "not a url",
	}
	for in, want := range tests {
		if got := NormalizeOrigin(in); got != want {
			t.Errorf("NormalizeOrigin(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestRequestOrigin はRequestOriginを検証する。
func TestRequestOrigin(t *testing.T) {
	t.Parallel()

	t.Run("平文HTTPではhttpスキームになること", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/api/backend", nil)
		if got := RequestOrigin(req); got != "http://localhost:8080" {
			t.Errorf("RequestOrigin() = %q, want %q", got, "http://localhost:8080")
		}
	})

	t.Run("TLS接続ではhttpsスキームになること", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "https://app.example/", nil)
		req.TLS = &tls.ConnectionState{}
		if got := RequestOrigin(req); got != "https://app.example" {
			t.Errorf("RequestOrigin() = %q, want %q", got, "https://app.example")
		}
	})

	t.Run("X-Forwarded-Protoのスキームが優先されること", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "http://app.example/", nil)
		req.Header.Set("X-Forwarded-Proto", "https, http")
		if got := RequestOrigin(req); got != "https://app.example" {
			t.Errorf("RequestOrigin() = %q, want %q", got, "https://app.example")
		}
	})
}

// alwaysValid は常に有効なセッションを返すSessionVerifier。
type alwaysValid struct{}

func (alwaysValid) Verify(string) (session.Session, bool) {
	return session.Session{Subject: "admin@example.com"}, true
}

// TestGateServerOrigin はGateが比較に使うサーバー自身のオリジンの扱いを検証する。
func TestGateServerOrigin(t *testing.T) {
	t.Parallel()

	newRouter := func(serverOrigin string, called *bool) *gin.Engine {
		router := gin.New()
		router.Use(Gate(GateConfig{
			Routes:       DefaultRoutes(),
			Verifier:     alwaysValid{},
			ServerOrigin: serverOrigin,
		}))
		router.Any("/api/backend/*path", func(c *gin.Context) {
			*called = true
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return router
	}

	t.Run("異なるOriginからの状態変更リクエストで403が返ること", func(t *testing.T) {
		t.Parallel()

		called := false
		router := newRouter("https://app.example", &called)

		req := httptest.NewRequest(http.MethodDelete, "/api/backend/notifiers/abc", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["detail"] != "Invalid request origin." {
			t.Errorf("detail = %q, want %q", body["detail"], "Invalid request origin.")
		}
		if called {
			t.Error("拒否されたリクエストでハンドラーが呼ばれるべきではない")
		}
	})

	t.Run("オリジン未設定の場合はHostヘッダーから導出すること", func(t *testing.T) {
		t.Parallel()

		called := false
		router := newRouter("", &called)

		req := httptest.NewRequest(http.MethodPost, "http://localhost:8080/api/backend/notifiers", nil)
		req.Header.Set("Origin", "http://localhost:8080")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if !called {
			t.Error("同一オリジンのリクエストでハンドラーが呼ばれるべき")
		}
	})

	t.Run("設定されたオリジンの末尾スラッシュは無視されること", func(t *testing.T) {
		t.Parallel()

		called := false
		router := newRouter("https://app.example/", &called)

		req := httptest.NewRequest(http.MethodPost, "/api/backend/notifiers", nil)
		req.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("大文字や既定ポートを含むOriginヘッダーも同一オリジンとして扱われること", func(t *testing.T) {
		t.Parallel()

		called := false
		router := newRouter("https://app.example", &called)

		req := httptest.NewRequest(http.MethodDelete, "/api/backend/notifiers/abc", nil)
		req.Header.Set("Origin", "https://APP.example:443")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if !called {
			t.Error("同一オリジンのリクエストでハンドラーが呼ばれるべき")
		}
	})
}
