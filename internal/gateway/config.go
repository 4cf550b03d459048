package gateway

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/bruinwatch/pkg/middleware"
	"github.com/nao1215/bruinwatch/pkg/session"
)

// minSecretLength は本番環境で要求する署名秘密鍵の最小バイト数。
const minSecretLength = 32

// devSessionSecret は開発環境でSESSION_SECRETが未設定の場合に使用する秘密鍵。
const devSessionSecret = "dev-secret-key-do-not-use-in-production"

var (
	// ErrMissingSecret は本番環境で十分な長さの署名秘密鍵が設定されていない場合のエラー。
	ErrMissingSecret = errors.New("SESSION_SECRETは32バイト以上で設定する必要があります")
	// ErrMissingAdminCredentials は本番環境で管理者の資格情報が設定されていない場合のエラー。
	ErrMissingAdminCredentials = errors.New("ADMIN_EMAILとADMIN_PASSWORD_HASHを設定する必要があります")
)

// Config はゲートウェイの設定。起動時に一度だけ読み込み、以降は変更しない。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// Env は実行環境（development または production）。
	Env string
	// AppName は画面に表示するアプリケーション名。
	AppName string
	// SessionSecret はセッショントークンの署名秘密鍵。
	SessionSecret string
	// SessionTTL はセッショントークンの有効期間。
	SessionTTL time.Duration
	// PublicOrigin はサーバー自身のオリジン。空の場合はリクエストから導出する。
	PublicOrigin string
	// BackendURL は通知バックエンドのベースURL。
	BackendURL string
	// BackendAPIKey はバックエンド呼び出し時に付与するAPIキー。
	BackendAPIKey string
	// AdminEmail は管理者のメールアドレス。
	AdminEmail string
	// AdminPasswordHash は管理者パスワードのbcryptハッシュ。
	AdminPasswordHash string
	// AuditDBPath は監査ログを保存するSQLiteファイルのパス。
	AuditDBPath string
}

// Production は本番環境かどうかを返す。本番環境ではCookieにSecure属性を付与する。
func (c Config) Production() bool {
	return c.Env == "production"
}

// LoadConfig は環境変数から設定を読み込む。getenvには通常 os.Getenv を渡す。
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:              getEnvOr(getenv, "PORT", "8080"),
		Env:               strings.ToLower(getEnvOr(getenv, "APP_ENV", "development")),
		AppName:           getEnvOr(getenv, "APP_NAME", "BruinWatch"),
		SessionSecret:     getenv("SESSION_SECRET"),
		PublicOrigin:      getenv("PUBLIC_ORIGIN"),
		BackendURL:        getEnvOr(getenv, "BACKEND_URL", "http://localhost:8000"),
		BackendAPIKey:     getenv("BACKEND_API_KEY"),
		AdminEmail:        strings.TrimSpace(getenv("ADMIN_EMAIL")),
		AdminPasswordHash: strings.TrimSpace(getenv("ADMIN_PASSWORD_HASH")),
		AuditDBPath:       getEnvOr(getenv, "AUDIT_DB_PATH", "/data/gateway.db"),
	}

	ttl, err := time.ParseDuration(getEnvOr(getenv, "SESSION_TTL", session.DefaultTTL.String()))
	if err != nil {
		return Config{}, fmt.Errorf("SESSION_TTLの解析に失敗: %w", err)
	}
	if ttl <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTLは正の値である必要があります: %s", ttl)
	}
	cfg.SessionTTL = ttl

	if cfg.PublicOrigin != "" {
		normalized := middleware.NormalizeOrigin(cfg.PublicOrigin)
		if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
			return Config{}, fmt.Errorf("PUBLIC_ORIGINが不正です: %q", cfg.PublicOrigin)
		}
		cfg.PublicOrigin = normalized
	}

	if cfg.Production() {
		if len(cfg.SessionSecret) < minSecretLength {
			return Config{}, ErrMissingSecret
		}
		if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
			return Config{}, ErrMissingAdminCredentials
		}
	} else if cfg.SessionSecret == "" {
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(getenv func(string) string, key, defaultValue string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return defaultValue
}
