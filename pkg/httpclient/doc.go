// Package httpclient はゲートウェイから通知バックエンドへのHTTP通信を行うクライアントを提供する。
//
// 保護APIのプロキシ転送とバックエンドのヘルスチェックで使用する。
// 認証済み管理者の識別子とバックエンド用APIキーの付与をここで統一する。
package httpclient
