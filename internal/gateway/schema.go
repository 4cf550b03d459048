package gateway

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/nao1215/bruinwatch/pkg/migration"
	_ "modernc.org/sqlite"
)

// migrationsFS は監査ログDBのマイグレーションファイル。
//
//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// memoryDSN はインメモリSQLiteを開くDSN。
const memoryDSN = ":memory:"

// openDB はSQLiteデータベースを開く。
// インメモリDBは接続ごとに別物になるため1接続に固定する。
func openDB(path string) (*sql.DB, error) {
	dsn := path
	if path != memoryDSN {
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if path == memoryDSN {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// initSchema はSQLiteデータベースにマイグレーションを適用する。
func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
