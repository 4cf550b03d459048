package middleware

import (
	"net/http"
	"path"
)

// CanonicalPath はルーティング前にリクエストパスを正規化するhttp.Handlerを返す。
// "." や ".." セグメント、重複したスラッシュを含むパスは正規化後のパスへ308でリダイレクトする。
// ルーティングとGateの分類が常に同じパスを見るようにするためにGinエンジンの外側に置く。
func CanonicalPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if cp := cleanPath(p); cp != p {
			u := *r.URL
			u.Path = cp
			u.RawPath = ""
			http.Redirect(w, r, u.String(), http.StatusPermanentRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cleanPath はpath.Cleanと同様に正規化するが、末尾のスラッシュは保持する。
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}
