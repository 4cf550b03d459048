package gateway

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// envMap はテスト用の環境変数。
type envMap map[string]string

func (m envMap) get(key string) string {
	return m[key]
}

// TestLoadConfig はLoadConfig関数を検証する。
func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("未設定の項目にデフォルト値が使われること", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig(envMap{}.get)
		if err != nil {
			t.Fatalf("LoadConfig()でエラーが発生: %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("Port: got %q, want %q", cfg.Port, "8080")
		}
		if cfg.Production() {
			t.Error("デフォルトが本番環境になっている")
		}
		if cfg.SessionSecret != devSessionSecret {
			t.Errorf("SessionSecret: got %q, want 開発用の秘密鍵", cfg.SessionSecret)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Errorf("SessionTTL: got %v, want 12h", cfg.SessionTTL)
		}
		if cfg.BackendURL != "http://localhost:8000" {
			t.Errorf("BackendURL: got %q", cfg.BackendURL)
		}
		if cfg.AuditDBPath != "/data/gateway.db" {
			t.Errorf("AuditDBPath: got %q", cfg.AuditDBPath)
		}
		if cfg.AppName != "BruinWatch" {
			t.Errorf("AppName: got %q", cfg.AppName)
		}
	})

	t.Run("環境変数の値が反映されること", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig(envMap{
			"PORT":            "9090",
			"SESSION_TTL":     "30m",
			"PUBLIC_ORIGIN":   "HTTPS://Admin.Example:443/",
			"BACKEND_URL":     "http://backend:8000",
			"BACKEND_API_KEY": "key",
			"ADMIN_EMAIL":     " admin@example.com ",
		}.get)
		if err != nil {
			t.Fatalf("LoadConfig()でエラーが発生: %v", err)
		}
		if cfg.Port != "9090" {
			t.Errorf("Port: got %q, want %q", cfg.Port, "9090")
		}
		if cfg.SessionTTL != 30*time.Minute {
			t.Errorf("SessionTTL: got %v, want 30m", cfg.SessionTTL)
		}
		if cfg.PublicOrigin != "https://admin.example" {
			t.Errorf("PublicOrigin: got %q, want %q", cfg.PublicOrigin, "https://admin.example")
		}
		if cfg.AdminEmail != "admin@example.com" {
			t.Errorf("AdminEmail: got %q", cfg.AdminEmail)
		}
	})

	t.Run("本番環境で秘密鍵が短い場合はErrMissingSecretが返ること", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(envMap{
			"APP_ENV":             "production",
			"SESSION_SECRET":      "short",
			"ADMIN_EMAIL":         "admin@example.com",
			"ADMIN_PASSWORD_HASH": "$2a$10$hash",
		}.get)
		if !errors.Is(err, ErrMissingSecret) {
			t.Errorf("エラー: got %v, want ErrMissingSecret", err)
		}
	})

	t.Run("本番環境で管理者が未設定の場合はErrMissingAdminCredentialsが返ること", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(envMap{
			"APP_ENV":        "production",
			"SESSION_SECRET": strings.Repeat("s", 32),
		}.get)
		if !errors.Is(err, ErrMissingAdminCredentials) {
			t.Errorf("エラー: got %v, want ErrMissingAdminCredentials", err)
		}
	})

	t.Run("本番環境で必要な設定が揃っていれば成功すること", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig(envMap{
			"APP_ENV":             "Production",
			"SESSION_SECRET":      strings.Repeat("s", 32),
			"ADMIN_EMAIL":         "admin@example.com",
			"ADMIN_PASSWORD_HASH": "$2a$10$hash",
		}.get)
		if err != nil {
			t.Fatalf("LoadConfig()でエラーが発生: %v", err)
		}
		if !cfg.Production() {
			t.Error("本番環境として扱われていない")
		}
	})

	invalid := []struct {
		name string
		env  envMap
	}{
		{name: "SESSION_TTLが解析できない場合はエラーが返ること", env: envMap{"SESSION_TTL": "12 hours"}},
		{name: "SESSION_TTLが0以下の場合はエラーが返ること", env: envMap{"SESSION_TTL": "-1h"}},
		{name: "PUBLIC_ORIGINにスキームが無い場合はエラーが返ること", env: envMap{"PUBLIC_ORIGIN": "admin.example"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := LoadConfig(tt.env.get); err == nil {
				t.Fatal("LoadConfig()がエラーを返すべきだが、nilが返った")
			}
		})
	}
}
