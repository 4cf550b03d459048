package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/bruinwatch/pkg/httpclient"
	"github.com/nao1215/bruinwatch/pkg/middleware"
	"github.com/nao1215/bruinwatch/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 10 * time.Second

// Server はゲートウェイのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg は起動時に読み込んだ設定。
	cfg Config
	// db は監査ログのSQLiteデータベース接続。
	db *sql.DB
	// codec はセッショントークンの発行と検証を行う。
	codec *session.Codec
	// backend はバックエンド通信用のHTTPクライアント。
	backend *httpclient.Client
	// healthClient はヘルスチェック用のHTTPクライアント。タイムアウトを短くしている。
	healthClient *httpclient.Client
	// audit は認証イベントの記録先。
	audit *AuditStore
	// registry は /metrics で公開するPrometheusレジストリ。
	registry *prometheus.Registry
	// metrics はゲートの判定結果の集計。
	metrics *middleware.DecisionMetrics
}

// NewServer は設定から新しいゲートウェイサーバーを生成する。
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	db, err := openDB(cfg.AuditDBPath)
	if err != nil {
		return nil, err
	}

	codec := session.NewCodec([]byte(cfg.SessionSecret), session.WithTTL(cfg.SessionTTL))
	s, err := newServer(ctx, cfg, db, codec)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// newServer は依存を受け取ってサーバーを組み立てる。テストではインメモリDBと固定時刻のCodecを渡す。
func newServer(ctx context.Context, cfg Config, db *sql.DB, codec *session.Codec) (*Server, error) {
	audit, err := NewAuditStore(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("監査ログの初期化に失敗: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	healthClient := httpclient.New(cfg.BackendURL,
		httpclient.WithAPIKey(cfg.BackendAPIKey),
		httpclient.WithTimeout(healthCheckTimeout),
	)

	s := &Server{
		cfg:          cfg,
		db:           db,
		codec:        codec,
		backend:      httpclient.New(cfg.BackendURL, httpclient.WithAPIKey(cfg.BackendAPIKey)),
		healthClient: healthClient,
		audit:        audit,
		registry:     registry,
		metrics:      middleware.NewDecisionMetrics(registry),
	}

	router := gin.New()
	// "/api/backend" を末尾スラッシュ付きへリダイレクトさせず、ゲートで判定させる
	router.RedirectTrailingSlash = false
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.Gate(middleware.GateConfig{
		Routes:       gatewayRoutes(),
		Verifier:     codec,
		CookieName:   session.CookieName,
		ServerOrigin: cfg.PublicOrigin,
		Metrics:      s.metrics,
	}))
	if err := loadTemplates(router); err != nil {
		return nil, err
	}
	s.router = router
	s.setupRoutes()

	log.Printf("[Gateway] バックエンド: %s", s.backend.BaseURL())
	return s, nil
}

// gatewayRoutes はゲートウェイの保護対象ルート。
func gatewayRoutes() middleware.Routes {
	return middleware.DefaultRoutes()
}

// Handler はパスを正規化してからルーターへ渡すハンドラを返す。
func (s *Server) Handler() http.Handler {
	return middleware.CanonicalPath(s.router)
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルシャットダウンする。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("[Gateway] シャットダウンを開始します")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("シャットダウンに失敗: %w", err)
		}
		return nil
	}
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はルーティングを設定する。
// 認可はすべてGateミドルウェアで判定済みのため、ここではハンドラの登録だけを行う。
func (s *Server) setupRoutes() {
	// 画面
	s.router.GET("/login", s.handleLoginPage())
	s.router.GET("/", s.handleDashboardPage())

	// 認証（ゲートの保護対象外）
	auth := s.router.Group("/api/auth")
	{
		auth.POST("/login", s.handleLogin())
		auth.POST("/logout", s.handleLogout())
	}

	// 監査ログ（保護API）
	s.router.GET("/api/audit/events", s.handleListAuditEvents())

	// バックエンド（保護API）
	s.router.Any("/api/backend/*path", s.handleProxy())

	// ヘルスチェックとメトリクス
	s.router.GET("/health", s.handleHealth())
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	})
}
