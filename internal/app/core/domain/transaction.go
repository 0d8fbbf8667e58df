package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TransactionType 交易類型
// 為了節省記憶體，使用 uint8
type TransactionType uint8

const (
	// 存款 (AddFunds, amount >= 0)
	TransactionTypeDeposit TransactionType = 1
	// 提款 (AddFunds, amount < 0)
	TransactionTypeWithdraw TransactionType = 2
	// 轉帳 (MoveFunds 的其中一腳)
	TransactionTypeTransfer TransactionType = 3
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeDeposit:
		return "deposit"
	case TransactionTypeWithdraw:
		return "withdraw"
	case TransactionTypeTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Transaction 交易，寫入帳本後不可變更
// 注意欄位排序以避免 Padding
type Transaction struct {
	// Account: 所屬帳戶 (只引用，不擁有)
	Account *Account
	// Amount: 金額，最小貨幣單位 (分)，可為負數
	Amount int64
	// Date: 建立時間，同一筆轉帳的兩腳共用同一個時間
	Date time.Time
	// ID: 外部追蹤號 (UUID)
	ID uuid.UUID
	// Type: 放到最後面，利用 Padding 空間
	Type TransactionType
}

// AccountName 回傳所屬帳戶名稱
func (t Transaction) AccountName() string {
	if t.Account == nil {
		return ""
	}
	return t.Account.Name()
}

// ParseAmount 將邊界傳入的數字字面值轉成金額
// 只接受十進位整數字面值，"50.0"、"5e1" 這類浮點寫法即使數值是整數也會被拒絕
func ParseAmount(literal string) (int64, error) {
	amount, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNonIntegerAmount, literal)
	}
	return amount, nil
}
