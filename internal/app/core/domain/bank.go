package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Bank 帳本聚合根：擁有所有帳戶與只能追加的交易紀錄
//
// 結構:
//
//	accounts: 帳戶名稱 -> 帳戶
//	order: 帳戶建立順序，列舉時保持穩定
//	transactions: 交易紀錄，寫入順序即時間順序
//
// Bank 本身不做同步，並發控制由 adapter/out/memory 的帳本引擎負責。
// 所有失敗的操作都不會改變狀態。
type Bank struct {
	accounts     map[string]*Account
	order        []*Account
	transactions []Transaction

	now   func() time.Time
	newID func() uuid.UUID
}

// BankOption 定義了 Bank 的配置選項函數
type BankOption func(*Bank)

// WithClock 設定交易時間來源 (測試用)
func WithClock(now func() time.Time) BankOption {
	return func(b *Bank) {
		b.now = now
	}
}

// WithIDGenerator 設定交易 ID 產生器 (測試用)
func WithIDGenerator(gen func() uuid.UUID) BankOption {
	return func(b *Bank) {
		b.newID = gen
	}
}

// NewBank 建立一個空的帳本
func NewBank(opts ...BankOption) *Bank {
	b := &Bank{
		accounts: make(map[string]*Account),
		now:      time.Now,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateAccount 建立帳戶
//
// 參數:
//
//	name: 帳戶名稱，不可為空白，不可重複
//
// 回傳:
//
//	*Account: 新建立的帳戶
//	error: ErrInvalidName / ErrDuplicateAccount
func (b *Bank) CreateAccount(name string) (*Account, error) {
	account, err := NewAccount(name)
	if err != nil {
		return nil, err
	}
	if _, ok := b.accounts[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateAccount, name)
	}
	b.accounts[name] = account
	b.order = append(b.order, account)
	return account, nil
}

// GetAccount 依名稱取得帳戶
func (b *Bank) GetAccount(name string) (*Account, error) {
	account, ok := b.accounts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAccountNotFound, name)
	}
	return account, nil
}

// Accounts 依建立順序回傳所有帳戶
func (b *Bank) Accounts() []*Account {
	out := make([]*Account, len(b.order))
	copy(out, b.order)
	return out
}

// AddFunds 存款 (amount >= 0) 或提款 (amount < 0)
//
// 參數:
//
//	name: 帳戶名稱
//	amount: 金額 (分)
//
// 回傳:
//
//	Transaction: 寫入帳本的交易
//	error: ErrAccountNotFound / ErrInsufficientFunds
func (b *Bank) AddFunds(name string, amount int64) (Transaction, error) {
	account, err := b.GetAccount(name)
	if err != nil {
		return Transaction{}, err
	}
	if _, err := b.balanceAfter(account, b.balanceOf(account), amount); err != nil {
		return Transaction{}, err
	}

	txType := TransactionTypeDeposit
	if amount < 0 {
		txType = TransactionTypeWithdraw
	}
	tx := b.newTransaction(account, amount, b.now(), txType)
	b.transactions = append(b.transactions, tx)
	return tx, nil
}

// MoveFunds 轉帳：等同 AddFunds(from, -amount) 再 AddFunds(to, +amount)，
// 兩筆交易共用同一個時間。兩腳都先驗證完成才寫入，失敗時不會留下任何一腳。
//
// 回傳:
//
//	Transaction: 扣款 (from)
//	Transaction: 入帳 (to)
//	error: ErrAccountNotFound / ErrInsufficientFunds / ErrNonIntegerAmount
func (b *Bank) MoveFunds(from, to string, amount int64) (Transaction, Transaction, error) {
	fromAccount, err := b.GetAccount(from)
	if err != nil {
		return Transaction{}, Transaction{}, err
	}
	toAccount, err := b.GetAccount(to)
	if err != nil {
		return Transaction{}, Transaction{}, err
	}
	if amount == math.MinInt64 {
		return Transaction{}, Transaction{}, fmt.Errorf("%w: %d cannot be negated", ErrNonIntegerAmount, amount)
	}

	fromAfter, err := b.balanceAfter(fromAccount, b.balanceOf(fromAccount), -amount)
	if err != nil {
		return Transaction{}, Transaction{}, err
	}
	toBefore := b.balanceOf(toAccount)
	if toAccount == fromAccount {
		toBefore = fromAfter
	}
	// amount 為負數時入帳那一腳才是扣款，同樣不可透支
	if _, err := b.balanceAfter(toAccount, toBefore, amount); err != nil {
		return Transaction{}, Transaction{}, err
	}

	now := b.now()
	debit := b.newTransaction(fromAccount, -amount, now, TransactionTypeTransfer)
	credit := b.newTransaction(toAccount, amount, now, TransactionTypeTransfer)
	b.transactions = append(b.transactions, debit, credit)
	return debit, credit, nil
}

// Balance 帳戶餘額 = 該帳戶所有交易金額總和，每次重新計算
func (b *Bank) Balance(name string) (int64, error) {
	account, err := b.GetAccount(name)
	if err != nil {
		return 0, err
	}
	return b.balanceOf(account), nil
}

// Transactions 依寫入順序回傳指定帳戶的交易 (複本)
func (b *Bank) Transactions(name string) ([]Transaction, error) {
	account, err := b.GetAccount(name)
	if err != nil {
		return nil, err
	}
	out := make([]Transaction, 0)
	for _, tx := range b.transactions {
		if tx.Account == account {
			out = append(out, tx)
		}
	}
	return out, nil
}

// AccountBalance 帳戶與其餘額
type AccountBalance struct {
	Account *Account
	Balance int64
}

// Balances 依建立順序回傳所有帳戶的餘額，只掃描一次交易紀錄
func (b *Bank) Balances() []AccountBalance {
	sums := make(map[*Account]int64, len(b.order))
	for _, tx := range b.transactions {
		sums[tx.Account] += tx.Amount
	}
	out := make([]AccountBalance, 0, len(b.order))
	for _, account := range b.order {
		out = append(out, AccountBalance{Account: account, Balance: sums[account]})
	}
	return out
}

// Log 依寫入順序回傳整本交易紀錄 (複本)
func (b *Bank) Log() []Transaction {
	out := make([]Transaction, len(b.transactions))
	copy(out, b.transactions)
	return out
}

// Size 回傳帳戶數與交易數
func (b *Bank) Size() (accounts int, transactions int) {
	return len(b.order), len(b.transactions)
}

func (b *Bank) balanceOf(account *Account) int64 {
	var balance int64
	for _, tx := range b.transactions {
		if tx.Account == account {
			balance += tx.Amount
		}
	}
	return balance
}

// balanceAfter 計算套用 amount 後的餘額，不可為負數也不可溢位
func (b *Bank) balanceAfter(account *Account, current, amount int64) (int64, error) {
	next := current + amount
	if (amount > 0 && next < current) || (amount < 0 && next > current) {
		return 0, fmt.Errorf("%w: balance of %q out of range", ErrNonIntegerAmount, account.Name())
	}
	if next < 0 {
		return 0, fmt.Errorf("%w: %q has %d, needs %d", ErrInsufficientFunds, account.Name(), current, -amount)
	}
	return next, nil
}

func (b *Bank) newTransaction(account *Account, amount int64, date time.Time, txType TransactionType) Transaction {
	return Transaction{
		Account: account,
		Amount:  amount,
		Date:    date,
		ID:      b.newID(),
		Type:    txType,
	}
}
