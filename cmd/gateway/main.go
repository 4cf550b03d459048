// ゲートウェイのエントリポイント。
// 管理画面と管理APIへのリクエストを認可し、バックエンドへ中継する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線となる。
package main

import "github.com/nao1215/bruinwatch/cmd/gateway/cmd"

func main() {
	cmd.Execute()
}
