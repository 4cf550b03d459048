package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName はセッショントークンを運搬するCookieの名前。
	CookieName = "bruinwatch_session"
	// DefaultIssuer はトークンのissクレームに設定する発行者名。
	DefaultIssuer = "bruinwatch-gateway"
	// DefaultTTL はトークンの既定の有効期間。
	DefaultTTL = 12 * time.Hour
)

// ErrEmptySubject は空のsubjectでトークンを発行しようとした場合のエラー。
var ErrEmptySubject = errors.New("subjectが空です")

// Session は検証済みトークンから導出されるリクエスト単位の認証情報。
// 1リクエストの処理中だけ有効で、リクエストをまたいでキャッシュしない。
type Session struct {
	// ID はトークンの一意識別子（jti）。
	ID string
	// Subject は認証済み管理者の識別子（メールアドレス）。
	Subject string
	// IssuedAt はトークンの発行日時。
	IssuedAt time.Time
	// ExpiresAt はトークンの有効期限。
	ExpiresAt time.Time
}

// Codec はセッショントークンの発行と検証を行う。
// 生成後は不変であり、複数のgoroutineから同時に使用できる。
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option はCodecの設定を変更する関数。
type Option func(*Codec)

// WithIssuer は発行者名を設定する。検証時にもissクレームとの一致を要求する。
func WithIssuer(issuer string) Option {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

// WithTTL はトークンの有効期間を設定する。
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		c.ttl = ttl
	}
}

// WithClock は現在時刻の取得関数を差し替える。テストで時刻を固定するために使用する。
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec は署名用秘密鍵から新しいCodecを生成する。
// secretはコピーして保持するため、呼び出し側で書き換えても影響しない。
func NewCodec(secret []byte, opts ...Option) *Codec {
	c := &Codec{
		secret: append([]byte(nil), secret...),
		issuer: DefaultIssuer,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	)
	return c
}

// TTL はトークンの有効期間を返す。Cookieの有効期限を揃えるために使用する。
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue はsubjectに対する新しいトークンを発行する。
// ログイン処理から呼び出され、ゲートウェイの判定処理からは呼び出されない。
func (c *Codec) Issue(subject string) (string, Session, error) {
	if subject == "" {
		return "", Session{}, ErrEmptySubject
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   subject,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, toSession(claims), nil
}

// Verify は生のトークン文字列を検証し、有効であればSessionを返す。
// 空・改ざん・署名不一致・期限切れのいずれも同じくfalseを返し、理由は返さない。
func (c *Codec) Verify(raw string) (Session, bool) {
	if raw == "" {
		return Session{}, false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := c.parser.ParseWithClaims(raw, claims, c.keyFunc)
	if err != nil || !token.Valid {
		return Session{}, false
	}
	if claims.Subject == "" {
		return Session{}, false
	}
	return toSession(*claims), true
}

// keyFunc は検証に使用する鍵を返す。アルゴリズムはパーサー側で HS256 に限定している。
func (c *Codec) keyFunc(_ *jwt.Token) (any, error) {
	return c.secret, nil
}

// toSession はクレームをSessionに変換する。
func toSession(claims jwt.RegisteredClaims) Session {
	s := Session{
		ID:      claims.ID,
		Subject: claims.Subject,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s
}
