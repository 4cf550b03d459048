// Package gateway はBruinWatchのリクエスト認可ゲートウェイの内部実装を提供する。
//
// 管理者ダッシュボードと通知バックエンドの前段に立ち、Cookieのセッショントークン検証、
// 状態変更リクエストのOrigin検証、保護ルートの判定を行う。
// ログイン・ログアウト、バックエンドへのプロキシ、認証イベントの監査ログも担当する。
package gateway
