package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/metrics"
)

// 操作名稱，作為 metrics label 與 log 欄位
const (
	OpCreateAccount = "create_account"
	OpGetAccount    = "get_account"
	OpListAccounts  = "list_accounts"
	OpAddFunds      = "add_funds"
	OpMoveFunds     = "move_funds"
	OpStatement     = "statement"
)

// CoreUseCase 是核心業務邏輯層，HTTP 與 gRPC adapter 共用
//
// 結構:
//
//	ledger: 帳本引擎 (Mutex 或 LMAX)
//	reporter: 報表層，負責餘額與對帳單
//	metrics: 指標收集器
//	logger: 結構化日誌
type CoreUseCase struct {
	ledger   Ledger
	reporter *BankReporter
	metrics  metrics.Collector
	logger   *zap.Logger
}

// Option 定義了 CoreUseCase 的配置選項函數
type Option func(*CoreUseCase)

// WithReporter 使用自訂的報表層 (例如不同的小數位數)
func WithReporter(reporter *BankReporter) Option {
	return func(c *CoreUseCase) {
		c.reporter = reporter
	}
}

// WithMetrics 設定指標收集器
func WithMetrics(collector metrics.Collector) Option {
	return func(c *CoreUseCase) {
		c.metrics = collector
	}
}

// WithLogger 設定日誌
func WithLogger(logger *zap.Logger) Option {
	return func(c *CoreUseCase) {
		c.logger = logger
	}
}

// NewCoreUseCase 建立核心業務邏輯層
func NewCoreUseCase(ledger Ledger, opts ...Option) *CoreUseCase {
	c := &CoreUseCase{
		ledger:  ledger,
		metrics: metrics.NoOpCollector{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reporter == nil {
		c.reporter = NewBankReporter(ledger)
	}
	return c
}

// Reporter 回傳報表層 (adapter 用來格式化金額)
func (c *CoreUseCase) Reporter() *BankReporter {
	return c.reporter
}

// CreateAccount 建立帳戶
func (c *CoreUseCase) CreateAccount(ctx context.Context, name string) (*domain.Account, error) {
	start := time.Now()
	account, err := c.ledger.CreateAccount(ctx, name)
	c.observe(ctx, OpCreateAccount, start, err, zap.String("account", name))
	if err == nil {
		c.recordSize(ctx)
	}
	return account, err
}

// GetAccount 取得帳戶與目前餘額
//
// 參數:
//
//	ctx: 上下文
//	name: 帳戶名稱
//
// 回傳:
//
//	AccountBalance: 帳戶與餘額
//	error: domain.ErrAccountNotFound
func (c *CoreUseCase) GetAccount(ctx context.Context, name string) (AccountBalance, error) {
	start := time.Now()
	result, err := c.getAccount(ctx, name)
	c.observe(ctx, OpGetAccount, start, err, zap.String("account", name))
	return result, err
}

func (c *CoreUseCase) getAccount(ctx context.Context, name string) (AccountBalance, error) {
	account, err := c.ledger.GetAccount(ctx, name)
	if err != nil {
		return AccountBalance{}, err
	}
	balance, err := c.reporter.GetBalance(ctx, name)
	if err != nil {
		return AccountBalance{}, err
	}
	return AccountBalance{Account: account, Balance: balance}, nil
}

// ListAccounts 依建立順序列出所有帳戶與餘額
func (c *CoreUseCase) ListAccounts(ctx context.Context) ([]AccountBalance, error) {
	start := time.Now()
	balances, err := c.reporter.Balances(ctx)
	c.observe(ctx, OpListAccounts, start, err)
	return balances, err
}

// AddFunds 存款 (amount >= 0) 或提款 (amount < 0)
func (c *CoreUseCase) AddFunds(ctx context.Context, name string, amount int64) (domain.Transaction, error) {
	start := time.Now()
	tx, err := c.ledger.AddFunds(ctx, name, amount)
	c.observe(ctx, OpAddFunds, start, err, zap.String("account", name), zap.Int64("amount", amount))
	if err == nil {
		c.recordSize(ctx)
	}
	return tx, err
}

// MoveFunds 轉帳，回傳 (扣款, 入帳)
func (c *CoreUseCase) MoveFunds(ctx context.Context, from, to string, amount int64) (domain.Transaction, domain.Transaction, error) {
	start := time.Now()
	debit, credit, err := c.ledger.MoveFunds(ctx, from, to, amount)
	c.observe(ctx, OpMoveFunds, start, err,
		zap.String("from", from),
		zap.String("to", to),
		zap.Int64("amount", amount),
	)
	if err == nil {
		c.recordSize(ctx)
	}
	return debit, credit, err
}

// Statement 產生帳戶對帳單
func (c *CoreUseCase) Statement(ctx context.Context, name string) (*Statement, error) {
	start := time.Now()
	statement, err := c.reporter.Statement(ctx, name)
	c.observe(ctx, OpStatement, start, err, zap.String("account", name))
	return statement, err
}

// observe 記錄操作結果：業務錯誤與取消為 debug，其餘錯誤為 error
func (c *CoreUseCase) observe(ctx context.Context, op string, start time.Time, err error, fields ...zap.Field) {
	outcome := domain.Classify(err)
	c.metrics.RecordOperation(op, outcome, time.Since(start))

	if err == nil {
		return
	}
	fields = append(fields, zap.String("op", op), zap.String("outcome", outcome), zap.Error(err))
	if domain.IsDomainError(err) || outcome == "canceled" {
		c.logger.Debug("ledger operation rejected", fields...)
		return
	}
	c.logger.Error("ledger operation failed", fields...)
}

func (c *CoreUseCase) recordSize(ctx context.Context) {
	accounts, transactions, err := c.ledger.Size(ctx)
	if err != nil {
		c.logger.Warn("failed to read ledger size", zap.Error(err))
		return
	}
	c.metrics.RecordLedgerSize(accounts, transactions)
}
