package domain

import (
	"context"
	"errors"
)

var (
	// ErrInvalidName 帳戶名稱為空白
	ErrInvalidName = errors.New("account name must not be blank")

	// ErrDuplicateAccount 帳戶已存在
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrNonIntegerAmount 金額不是整數字面值
	ErrNonIntegerAmount = errors.New("amount must be an integer")

	// ErrInsufficientFunds 餘額不足 (交易後餘額會小於 0)
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrLedgerClosed 帳本引擎已停止
	ErrLedgerClosed = errors.New("ledger is closed")
)

// Classify 回傳錯誤種類名稱，給 metrics label 與 log 使用
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrDuplicateAccount):
		return "duplicate_account"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrNonIntegerAmount):
		return "non_integer_amount"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrLedgerClosed):
		return "ledger_closed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// IsDomainError 判斷是否為業務錯誤 (呼叫端造成，非系統故障)
func IsDomainError(err error) bool {
	switch Classify(err) {
	case "ok", "internal", "ledger_closed", "canceled":
		return false
	}
	return true
}
