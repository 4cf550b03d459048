package middleware

import (
	"net/http"
)

// DecisionKind は判定結果の種類。
type DecisionKind int

const (
	// KindAllow は次のハンドラにそのまま処理を渡す。
	KindAllow DecisionKind = iota
	// KindRedirectLogin はログインページへリダイレクトする。
	KindRedirectLogin
	// KindRedirectHome はアプリケーションのルートへリダイレクトする。
	KindRedirectHome
	// KindReject はステータスコードとJSONボディで拒否する。
	KindReject
)

// Decision はゲートウェイの判定結果。
// KindRejectの場合のみStatusとDetailを持つ。
type Decision struct {
	// Kind は判定結果の種類。
	Kind DecisionKind
	// Status は拒否時のHTTPステータスコード。
	Status int
	// Detail は拒否時のレスポンスボディの detail フィールド。
	Detail string
}

var (
	// Allow はリクエストを通過させる判定。
	Allow = Decision{Kind: KindAllow}
	// RedirectLogin はログインページへ誘導する判定。
	RedirectLogin = Decision{Kind: KindRedirectLogin}
	// RedirectHome はルートへ誘導する判定。
	RedirectHome = Decision{Kind: KindRedirectHome}
	// RejectUnauthorized は未認証のAPI呼び出しを拒否する判定。
	RejectUnauthorized = Decision{Kind: KindReject, Status: http.StatusUnauthorized, Detail: "Unauthorized"}
	// RejectInvalidOrigin は不正なOriginからの状態変更リクエストを拒否する判定。
	RejectInvalidOrigin = Decision{Kind: KindReject, Status: http.StatusForbidden, Detail: "Invalid request origin."}
)

// String はメトリクスのラベルに使用する判定名を返す。
func (d Decision) String() string {
	switch d.Kind {
	case KindRedirectLogin:
		return "redirect_login"
	case KindRedirectHome:
		return "redirect_home"
	case KindReject:
		switch d.Status {
		case http.StatusUnauthorized:
			return "reject_401"
		case http.StatusForbidden:
			return "reject_403"
		}
		return "reject"
	default:
		return "allow"
	}
}

// outcome はセッションの有無ごとの判定結果。
type outcome struct {
	withSession    Decision
	withoutSession Decision
}

// decisionTable はパス分類とセッション有無から判定結果を引くテーブル。
// 分類を追加する場合は制御フローではなくこのテーブルに行を追加する。
var decisionTable = map[Category]outcome{
	CategoryLogin:         {withSession: RedirectHome, withoutSession: Allow},
	CategoryProtectedPage: {withSession: Allow, withoutSession: RedirectLogin},
	CategoryProtectedAPI:  {withSession: Allow, withoutSession: RejectUnauthorized},
	CategoryPublic:        {withSession: Allow, withoutSession: Allow},
}

// Decide はパス分類とセッションの有無から判定結果を返す。
// テーブルに無い分類は公開パスとして扱う。
func Decide(category Category, hasSession bool) Decision {
	o, ok := decisionTable[category]
	if !ok {
		return Allow
	}
	if hasSession {
		return o.withSession
	}
	return o.withoutSession
}
