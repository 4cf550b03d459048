package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditKind は認証イベントの種別。
type AuditKind string

const (
	// AuditLoginSucceeded はログイン成功。
	AuditLoginSucceeded AuditKind = "login_succeeded"
	// AuditLoginFailed はログイン失敗。
	AuditLoginFailed AuditKind = "login_failed"
	// AuditLogout はログアウト。
	AuditLogout AuditKind = "logout"
)

// auditTimeLayout はcreated_atの保存形式。桁数を固定して文字列順と時刻順を一致させる。
const auditTimeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	// defaultAuditLimit は一覧取得件数のデフォルト値。
	defaultAuditLimit = 50
	// maxAuditLimit は一覧取得件数の上限。
	maxAuditLimit = 200
)

// AuditEvent は認証イベント1件。
type AuditEvent struct {
	// ID はイベントの一意識別子。
	ID string `json:"id"`
	// Kind はイベント種別。
	Kind AuditKind `json:"kind"`
	// Email は対象のメールアドレス。
	Email string `json:"email"`
	// RemoteAddr はリクエスト元のアドレス。
	RemoteAddr string `json:"remote_addr"`
	// CreatedAt は発生日時（UTC）。
	CreatedAt time.Time `json:"created_at"`
}

// AuditStore は認証イベントをSQLiteに記録する。
type AuditStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewAuditStore はマイグレーションを適用してAuditStoreを生成する。
func NewAuditStore(ctx context.Context, db *sql.DB) (*AuditStore, error) {
	if err := initSchema(ctx, db); err != nil {
		return nil, err
	}
	return &AuditStore{db: db, now: time.Now}, nil
}

// Record は認証イベントを1件記録する。
func (a *AuditStore) Record(ctx context.Context, kind AuditKind, email, remoteAddr string) (AuditEvent, error) {
	ev := AuditEvent{
		ID:         uuid.New().String(),
		Kind:       kind,
		Email:      email,
		RemoteAddr: remoteAddr,
		CreatedAt:  a.now().UTC(),
	}

	_, err := a.db.ExecContext(ctx,
		`INSERT INTO auth_events (id, kind, email, remote_addr, created_at) VALUES (?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Kind), ev.Email, ev.RemoteAddr, ev.CreatedAt.Format(auditTimeLayout),
	)
	if err != nil {
		return AuditEvent{}, fmt.Errorf("認証イベントの記録に失敗: %w", err)
	}
	return ev, nil
}

// List は新しい順に最大limit件の認証イベントを返す。
// limitが1未満の場合はデフォルト件数、上限を超える場合は上限件数に丸める。
func (a *AuditStore) List(ctx context.Context, limit int) ([]AuditEvent, error) {
	switch {
	case limit < 1:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}

	// 同時刻のイベントは後から記録したものを先に返す
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, kind, email, remote_addr, created_at FROM auth_events
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("認証イベントの取得に失敗: %w", err)
	}
	defer rows.Close()

	events := make([]AuditEvent, 0, limit)
	for rows.Next() {
		var (
			ev        AuditEvent
			kind      string
			createdAt string
		)
		if err := rows.Scan(&ev.ID, &kind, &ev.Email, &ev.RemoteAddr, &createdAt); err != nil {
			return nil, fmt.Errorf("認証イベントの読み取りに失敗: %w", err)
		}
		ev.Kind = AuditKind(kind)
		ev.CreatedAt, err = time.Parse(auditTimeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("created_atの解析に失敗: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("認証イベントの取得に失敗: %w", err)
	}
	return events, nil
}
