package middleware

import (
	"net/http"
	"net/url"
	"strings"

)

// stateChangingMethods はサーバー側の状態を変更するHTTPメソッド。
var stateChangingMethods = map[string]struct{}{
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// IsStateChanging はメソッドが状態変更を伴うかどうかを返す。
func IsStateChanging(method string) bool {
	_, ok := stateChangingMethods[strings.ToUpper(method)]
	return ok
}

// CheckOrigin はAPI名前空間への状態変更リクエストのOriginを検証する。
// Originヘッダーが無い場合は同一オリジンのフォーム送信等とみなして許可する。
// 比較は双方をNormalizeOriginで正規化してから行う。セッションの有無には依存しない。
func (t *RouteTable) CheckOrigin(method, p, origin, serverOrigin string) Decision {
	if !t.InAPINamespace(p) || !IsStateChanging(method) {
		return Allow
	}
	if origin == "" {
		return Allow
	}
	if NormalizeOrigin(origin) != NormalizeOrigin(serverOrigin) {
		return RejectInvalidOrigin
	}
	return Allow
}

// RequestOrigin はリクエストが到達したサーバー自身のオリジン（scheme://host[:port]）を返す。
// リバースプロキシ配下ではX-Forwarded-Protoのスキームを優先する。
func RequestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return NormalizeOrigin(scheme + "://" + r.Host)
}

// NormalizeOrigin はオリジン文字列を比較用の正規形（小文字、既定ポート省略、末尾スラッシュ無し）に変換する。
// 解析できない場合は末尾スラッシュだけを取り除いて返す。
func NormalizeOrigin(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return ""
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimSuffix(origin, "/")
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		host += ":" + port
	}
	return scheme + "://" + host
}

// originDecision はリクエストに対するOrigin検証の結果を返す。
// 検証対象外のリクエストではサーバーのオリジンを導出しない。
func (t *RouteTable) originDecision(r *http.Request, serverOrigin string) Decision {
	if !t.InAPINamespace(r.URL.Path) || !IsStateChanging(r.Method) {
		return Allow
	}
	return t.CheckOrigin(r.Method, r.URL.Path, r.Header.Get("Origin"), originFor(r, serverOrigin))
}

// originFor は設定済みのオリジンがあればそれを、無ければリクエストから導出したオリジンを返す。
func originFor(r *http.Request, configured string) string {
	if configured != "" {
		return configured
	}
	return RequestOrigin(r)
}
