// Назначение: генерация bcrypt-хеша пароля для учетных записей дашборда.
//
// Результат подставляется в переменные окружения ADMIN_PASSWORD_HASH,
// OPERATOR_PASSWORD_HASH или VIEWER_PASSWORD_HASH.
//
// Использование:
//
//	go run ./cmd/hashpw -cost 12
//	echo -n 'secret' | go run ./cmd/hashpw
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"dashboard/pkg/crypto"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor (4-31)")
	flag.Parse()

	fi, err := os.Stdin.Stat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to stat stdin: %v\n", err)
		os.Exit(1)
	}

	// Интерактивный режим печатает приглашение, пайп читается молча
	if fi.Mode()&os.ModeCharDevice != 0 {
		fmt.Fprint(os.Stderr, "Password: ")
	}

	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil && password == "" {
		fmt.Fprintf(os.Stderr, "failed to read password: %v\n", err)
		os.Exit(1)
	}
	password = strings.TrimRight(password, "\r\n")

	hash, err := crypto.HashPasswordWithCost(password, *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
