package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// minPasswordLength は管理者パスワードの最小文字数。
const minPasswordLength = 12

var hashCost int

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "ADMIN_PASSWORD_HASHに設定するbcryptハッシュを生成する",
	Long: `管理者パスワードを読み取り、ADMIN_PASSWORD_HASHに設定するbcryptハッシュを出力する。
端末から実行した場合はエコーせずに入力を求め、パイプの場合は標準入力の1行目を使う。`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		hash, err := hashPassword(password, hashCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

// readPassword はパスワードを読み取る。標準入力が端末の場合はエコーを無効にする。
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("パスワードの読み取りに失敗: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("パスワードの読み取りに失敗: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// hashPassword はパスワードのbcryptハッシュを生成する。
func hashPassword(password string, cost int) (string, error) {
	if len([]rune(password)) < minPasswordLength {
		return "", fmt.Errorf("パスワードは%d文字以上で指定してください", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("ハッシュの生成に失敗: %w", err)
	}
	return string(hash), nil
}

func init() {
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcryptのコスト")
	rootCmd.AddCommand(hashPasswordCmd)
}
