package usecase

import (
	"context"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

//go:generate mockery --name Ledger --output ./mocks --outpkg mocks

// LedgerReader 帳本唯讀介面，報表層只依賴這一層
type LedgerReader interface {
	// GetAccount 依名稱取得帳戶
	GetAccount(ctx context.Context, name string) (*domain.Account, error)
	// ListAccounts 依建立順序列出所有帳戶
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	// Balances 所有帳戶的餘額，取自同一個快照
	Balances(ctx context.Context) ([]domain.AccountBalance, error)
	// Balance 帳戶餘額 (交易總和)
	Balance(ctx context.Context, name string) (int64, error)
	// Transactions 帳戶的交易紀錄 (同一個一致的快照)
	Transactions(ctx context.Context, name string) ([]domain.Transaction, error)
	// Size 帳戶數與交易數
	Size(ctx context.Context) (accounts int, transactions int, err error)
}

// Ledger 是帳務系統的介面，由 adapter/out/memory 的引擎實作
type Ledger interface {
	LedgerReader
	// CreateAccount 建立帳戶
	CreateAccount(ctx context.Context, name string) (*domain.Account, error)
	// AddFunds 存款或提款
	AddFunds(ctx context.Context, name string, amount int64) (domain.Transaction, error)
	// MoveFunds 轉帳，回傳 (扣款, 入帳)
	MoveFunds(ctx context.Context, from, to string, amount int64) (domain.Transaction, domain.Transaction, error)
}
