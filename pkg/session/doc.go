// Package session は管理者セッショントークンの発行と検証を提供する。
//
// トークンはHS256で署名されたJWTで、Cookieで運搬される自己完結型の資格情報である。
// サーバー側にセッション状態は保持せず、リクエストごとに署名と有効期限を再検証する。
package session
