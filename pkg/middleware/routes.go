package middleware

import (
	"strings"
)

// Category はリクエストパスの分類。
type Category int

const (
	// CategoryPublic は認証不要のパス。未分類のパスもここに含まれる。
	CategoryPublic Category = iota
	// CategoryLogin はログインページ。
	CategoryLogin
	// CategoryProtectedPage はセッションが必要なブラウザ向けページ。
	CategoryProtectedPage
	// CategoryProtectedAPI はセッションが必要なAPI。
	CategoryProtectedAPI
)

// String はカテゴリ名を返す。
func (c Category) String() string {
	switch c {
	case CategoryLogin:
		return "login"
	case CategoryProtectedPage:
		return "protected-page"
	case CategoryProtectedAPI:
		return "protected-api"
	default:
		return "public"
	}
}

// Routes は保護対象ルートの設定。起動時に一度だけ組み立てる。
// 新しい保護ルートは判定ロジックに手を入れずにここへ追加する。
type Routes struct {
	// LoginPath はログインページのパス。
	LoginPath string
	// HomePath はアプリケーションのルートパス。ログイン済みの場合のリダイレクト先。
	HomePath string
	// ProtectedPages はセッションが必要なページのパス（完全一致）。
	ProtectedPages []string
	// ProtectedAPIPrefixes はセッションが必要なAPIの名前空間。
	ProtectedAPIPrefixes []string
	// PublicAPIPaths は保護名前空間に含まれても認証不要とするAPIパス。
	PublicAPIPaths []string
	// APIPrefix はOrigin検証の対象となるAPI全体の名前空間。
	APIPrefix string
}

// DefaultRoutes はBruinWatchの標準ルート設定を返す。
func DefaultRoutes() Routes {
	return Routes{
		LoginPath:            "/login",
		HomePath:             "/",
		ProtectedPages:       []string{"/"},
		ProtectedAPIPrefixes: []string{"/api/backend", "/api/audit"},
		PublicAPIPaths:       []string{"/api/auth/login", "/api/auth/logout"},
		APIPrefix:            "/api",
	}
}

// RouteTable はRoutesを検索用に変換した不変のテーブル。
// 生成後は読み取り専用で、複数のリクエストから同時に参照できる。
type RouteTable struct {
	loginPath    string
	homePath     string
	pages        map[string]struct{}
	apiPrefixes  []string
	publicAPIs   map[string]struct{}
	apiNamespace string
}

// NewRouteTable はRoutesからRouteTableを生成する。引数のスライスはコピーされる。
func NewRouteTable(r Routes) *RouteTable {
	t := &RouteTable{
		loginPath:    r.LoginPath,
		homePath:     r.HomePath,
		pages:        make(map[string]struct{}, len(r.ProtectedPages)),
		publicAPIs:   make(map[string]struct{}, len(r.PublicAPIPaths)),
		apiNamespace: trimPrefix(r.APIPrefix),
	}
	if t.homePath == "" {
		t.homePath = "/"
	}
	for _, p := range r.ProtectedPages {
		t.pages[p] = struct{}{}
	}
	for _, p := range r.ProtectedAPIPrefixes {
		t.apiPrefixes = append(t.apiPrefixes, trimPrefix(p))
	}
	for _, p := range r.PublicAPIPaths {
		t.publicAPIs[p] = struct{}{}
	}
	return t
}

// LoginPath はログインページのパスを返す。
func (t *RouteTable) LoginPath() string {
	return t.loginPath
}

// HomePath はアプリケーションのルートパスを返す。
func (t *RouteTable) HomePath() string {
	return t.homePath
}

// Classify はパスを分類する。ログインページ、保護ページ、保護APIの順に判定する。
func (t *RouteTable) Classify(p string) Category {
	if t.loginPath != "" && p == t.loginPath {
		return CategoryLogin
	}
	if _, ok := t.pages[p]; ok {
		return CategoryProtectedPage
	}
	if _, ok := t.publicAPIs[p]; ok {
		return CategoryPublic
	}
	for _, prefix := range t.apiPrefixes {
		if hasPathPrefix(p, prefix) {
			return CategoryProtectedAPI
		}
	}
	return CategoryPublic
}

// InAPINamespace はパスがAPI名前空間に含まれるかどうかを返す。
func (t *RouteTable) InAPINamespace(p string) bool {
	return t.apiNamespace != "" && hasPathPrefix(p, t.apiNamespace)
}

// hasPathPrefix はパスがprefixそのものか、prefix配下のセグメントであるかを返す。
// "/api/backend" は "/api/backend/x" に一致するが "/api/backendx" には一致しない。
func hasPathPrefix(p, prefix string) bool {
	if prefix == "" {
		return false
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// trimPrefix は名前空間の末尾スラッシュを取り除く。
func trimPrefix(prefix string) string {
	if prefix == "/" {
		return ""
	}
	return strings.TrimSuffix(prefix, "/")
}
