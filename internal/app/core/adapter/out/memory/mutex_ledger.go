package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// MutexLedger 是一個使用 RWMutex 保護整本帳的帳本引擎
//
// 結構:
//
//	bank: 帳本聚合根 (帳戶與交易紀錄)
//	mu: 寫入時獨佔，讀取時共享
//
// 每個操作都在同一把鎖內完成，因此讀取看到的是一致的快照，
// 轉帳的兩筆交易也不會被其他操作看到只寫了一半。
type MutexLedger struct {
	bank *domain.Bank
	mu   sync.RWMutex
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
//
// 參數:
//
//	bank: 帳本，nil 時建立空的帳本
//
// 回傳:
//
//	*MutexLedger: MutexLedger 實例
func NewMutexLedger(bank *domain.Bank) *MutexLedger {
	if bank == nil {
		bank = domain.NewBank()
	}
	return &MutexLedger{
		bank: bank,
	}
}

// CreateAccount 建立帳戶
func (m *MutexLedger) CreateAccount(ctx context.Context, name string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bank.CreateAccount(name)
}

// GetAccount 依名稱取得帳戶
func (m *MutexLedger) GetAccount(ctx context.Context, name string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bank.GetAccount(name)
}

// ListAccounts 依建立順序列出所有帳戶
func (m *MutexLedger) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bank.Accounts(), nil
}

// AddFunds 存款或提款
//
// 參數:
//
//	ctx: 上下文
//	name: 帳戶名稱
//	amount: 金額，負數為提款
//
// 回傳:
//
//	domain.Transaction: 寫入的交易
//	error: 處理錯誤 (如帳戶不存在、餘額不足)
func (m *MutexLedger) AddFunds(ctx context.Context, name string, amount int64) (domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Transaction{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bank.AddFunds(name, amount)
}

// MoveFunds 轉帳，兩筆交易在同一把鎖內寫入
func (m *MutexLedger) MoveFunds(ctx context.Context, from, to string, amount int64) (domain.Transaction, domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Transaction{}, domain.Transaction{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bank.MoveFunds(from, to, amount)
}

// Balance 帳戶餘額
func (m *MutexLedger) Balance(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bank.Balance(name)
}

// Balances 所有帳戶的餘額，在同一把讀鎖內計算
func (m *MutexLedger) Balances(ctx context.Context) ([]domain.AccountBalance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bank.Balances(), nil
}

// Transactions 帳戶的交易紀錄
func (m *MutexLedger) Transactions(ctx context.Context, name string) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bank.Transactions(name)
}

// Size 帳戶數與交易數
func (m *MutexLedger) Size(ctx context.Context) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts, transactions := m.bank.Size()
	return accounts, transactions, nil
}

var _ usecase.Ledger = (*MutexLedger)(nil)
