package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// DefaultMinorUnits 預設小數位數 (1 元 = 100 分)
const DefaultMinorUnits int32 = 2

// AccountBalance 帳戶與其餘額
type AccountBalance = domain.AccountBalance

// StatementLine 對帳單的一行：交易與交易後的累計餘額
type StatementLine struct {
	Transaction    domain.Transaction
	RunningBalance int64
}

// Statement 帳戶對帳單
type Statement struct {
	Account *domain.Account
	Lines   []StatementLine
	// Closing 期末餘額，等於最後一行的 RunningBalance (無交易時為 0)
	Closing int64
}

// BankReporter 報表層：只讀取帳本，計算衍生的檢視
type BankReporter struct {
	ledger     LedgerReader
	minorUnits int32
}

// ReporterOption 定義了 BankReporter 的配置選項函數
type ReporterOption func(*BankReporter)

// WithMinorUnits 設定金額顯示的小數位數
func WithMinorUnits(units int32) ReporterOption {
	return func(r *BankReporter) {
		r.minorUnits = units
	}
}

// NewBankReporter 建立報表層
func NewBankReporter(ledger LedgerReader, opts ...ReporterOption) *BankReporter {
	r := &BankReporter{
		ledger:     ledger,
		minorUnits: DefaultMinorUnits,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetBalance 取得帳戶餘額，帳戶不存在時回傳 domain.ErrAccountNotFound
func (r *BankReporter) GetBalance(ctx context.Context, name string) (int64, error) {
	return r.ledger.Balance(ctx, name)
}

// Balances 依建立順序列出所有帳戶與餘額，所有餘額來自同一個快照
func (r *BankReporter) Balances(ctx context.Context) ([]AccountBalance, error) {
	return r.ledger.Balances(ctx)
}

// Statement 產生帳戶對帳單
//
// 參數:
//
//	ctx: 上下文
//	name: 帳戶名稱
//
// 回傳:
//
//	*Statement: 依交易順序排列，每行附累計餘額
//	error: domain.ErrAccountNotFound
func (r *BankReporter) Statement(ctx context.Context, name string) (*Statement, error) {
	account, err := r.ledger.GetAccount(ctx, name)
	if err != nil {
		return nil, err
	}
	txs, err := r.ledger.Transactions(ctx, name)
	if err != nil {
		return nil, err
	}

	statement := &Statement{
		Account: account,
		Lines:   make([]StatementLine, 0, len(txs)),
	}
	var running int64
	for _, tx := range txs {
		running += tx.Amount
		statement.Lines = append(statement.Lines, StatementLine{Transaction: tx, RunningBalance: running})
	}
	statement.Closing = running
	return statement, nil
}

// FormatAmount 將最小單位金額轉成主單位字串，例如 1234 -> "12.34"
func (r *BankReporter) FormatAmount(amount int64) string {
	return decimal.New(amount, -r.minorUnits).StringFixed(r.minorUnits)
}
