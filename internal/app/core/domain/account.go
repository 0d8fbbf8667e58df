package domain

import (
	"fmt"
	"strings"
)

// Account 帳戶，建立後不可變更
// 名稱不對外開放寫入，讓 Transaction 可以安全地共用同一個指標
type Account struct {
	name string
}

// NewAccount 建立帳戶，名稱去除空白後不可為空
func NewAccount(name string) (*Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return &Account{name: name}, nil
}

// Name 帳戶名稱
func (a *Account) Name() string {
	return a.name
}
