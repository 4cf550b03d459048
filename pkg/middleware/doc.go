// Package middleware はBruinWatchゲートウェイのリクエスト認可ミドルウェアを提供する。
//
// 状態変更リクエストのOrigin検証、Cookieのセッショントークン検証、
// ルート分類に基づく通過・リダイレクト・拒否の判定を1つのGinミドルウェアに合成する。
// パスの正規化、パニックリカバリ、判定結果のメトリクスもここに含む。
package middleware
