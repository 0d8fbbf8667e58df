package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// DefaultQueueSize 輸送帶預設緩衝大小
const DefaultQueueSize = 1000

// ledgerRequest 請求包裝，讓呼叫端可以等待核心迴圈執行完畢
type ledgerRequest struct {
	fn   func(*domain.Bank)
	done chan struct{}
}

// LMAXLedger 單執行緒帳本引擎：只有核心迴圈會碰 bank，
// 所有讀寫都透過輸送帶依序執行，因此不需要任何鎖。
//
// Submit(等待) -> Channel -> Run Loop (核心) -> Bank -> done -> Submit(收到結果)
type LMAXLedger struct {
	bank *domain.Bank
	// 輸送帶 負責接收請求
	requests chan *ledgerRequest
	// Pool 減少 GC 壓力
	requestPool sync.Pool
	// 核心迴圈結束後關閉
	stopped   chan struct{}
	started   atomic.Bool
	startOnce sync.Once
}

// NewLMAXLedger 建立一個新的 LMAXLedger 實例，需要呼叫 Start 才會開始處理請求，
// Start 之前的呼叫一律回傳 domain.ErrLedgerClosed
//
// 參數:
//
//	bank: 帳本，nil 時建立空的帳本
//	queueSize: 輸送帶緩衝大小，<= 0 時使用 DefaultQueueSize
//
// 回傳:
//
//	*LMAXLedger: LMAXLedger 實例
func NewLMAXLedger(bank *domain.Bank, queueSize int) *LMAXLedger {
	if bank == nil {
		bank = domain.NewBank()
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &LMAXLedger{
		bank:     bank,
		requests: make(chan *ledgerRequest, queueSize),
		stopped:  make(chan struct{}),
		requestPool: sync.Pool{
			New: func() interface{} {
				return &ledgerRequest{
					done: make(chan struct{}, 1),
				}
			},
		},
	}
}

// Start 啟動核心引擎 (非同步)，ctx 結束時處理完剩下的請求後停止
func (l *LMAXLedger) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		l.started.Store(true)
		go l.run(ctx)
	})
}

// Stopped 核心迴圈結束後關閉的 channel
func (l *LMAXLedger) Stopped() <-chan struct{} {
	return l.stopped
}

func (l *LMAXLedger) run(ctx context.Context) {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的請求處理完
			l.drain()
			return
		case req := <-l.requests:
			l.process(req)
		}
	}
}

func (l *LMAXLedger) drain() {
	for {
		select {
		case req := <-l.requests:
			l.process(req)
		default:
			return
		}
	}
}

func (l *LMAXLedger) process(req *ledgerRequest) {
	req.fn(l.bank)
	req.done <- struct{}{}
}

// submit 把 fn 放上輸送帶並等待執行完成
//
// 回傳:
//
//	error: ctx 在排入前結束時為 ctx.Err()，引擎未啟動或已停止時為 domain.ErrLedgerClosed
func (l *LMAXLedger) submit(ctx context.Context, fn func(*domain.Bank)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !l.started.Load() {
		return fmt.Errorf("%w: not started", domain.ErrLedgerClosed)
	}
	select {
	case <-l.stopped:
		return domain.ErrLedgerClosed
	default:
	}

	req := l.requestPool.Get().(*ledgerRequest)
	req.fn = fn

	select {
	case l.requests <- req:
	case <-l.stopped:
		req.fn = nil
		l.requestPool.Put(req)
		return domain.ErrLedgerClosed
	case <-ctx.Done():
		req.fn = nil
		l.requestPool.Put(req)
		return ctx.Err()
	}

	// 已排入就等結果，避免呼叫端放棄後交易仍被寫入
	select {
	case <-req.done:
	case <-l.stopped:
		select {
		case <-req.done:
		default:
			// 迴圈結束前沒輪到，req 留在輸送帶上，不放回 Pool
			return domain.ErrLedgerClosed
		}
	}
	req.fn = nil
	l.requestPool.Put(req)
	return nil
}

// CreateAccount 建立帳戶
func (l *LMAXLedger) CreateAccount(ctx context.Context, name string) (*domain.Account, error) {
	var (
		account *domain.Account
		err     error
	)
	if submitErr := l.submit(ctx, func(b *domain.Bank) {
		account, err = b.CreateAccount(name)
	}); submitErr != nil {
		return nil, submitErr
	}
	return account, err
}

// GetAccount 依名稱取得帳戶
func (l *LMAXLedger) GetAccount(ctx context.Context, name string) (*domain.Account, error) {
	var (
		account *domain.Account
		err     error
	)
	if submitErr := l.submit(ctx, func(b *domain.Bank) {
		account, err = b.GetAccount(name)
	}); submitErr != nil {
		return nil, submitErr
	}
	return account, err
}

// ListAccounts 依建立順序列出所有帳戶
func (l *LMAXLedger) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	var accounts []*domain.Account
	if err := l.submit(ctx, func(b *domain.Bank) {
		accounts = b.Accounts()
	}); err != nil {
		return nil, err
	}
	return accounts, nil
}

// AddFunds 存款或提款
func (l *LMAXLedger) AddFunds(ctx context.Context, name string, amount int64) (domain.Transaction, error) {
	var (
		tx  domain.Transaction
		err error
	)
	if submitErr := l.submit(ctx, func(b *domain.Bank) {
		tx, err = b.AddFunds(name, amount)
	}); submitErr != nil {
		return domain.Transaction{}, submitErr
	}
	return tx, err
}

// MoveFunds 轉帳，兩筆交易在同一次迴圈內寫入
func (l *LMAXLedger) MoveFunds(ctx context.Context, from, to string, amount int64) (domain.Transaction, domain.Transaction, error) {
	var (
		debit, credit domain.Transaction
		err           error
	)
	if submitErr := l.submit(ctx, func(b *domain.Bank) {
		debit, credit, err = b.MoveFunds(from, to, amount)
	}); submitErr != nil {
		return domain.Transaction{}, domain.Transaction{}, submitErr
	}
	return debit, credit, err
}

// Balance 帳戶餘額
func (l *LMAXLedger) Balance(ctx context.Context, name string) (int64, error) {
	var (
		balance int64
		err     error
	)
	if submitErr := l.submit(ctx, func(b *domain.Bank) {
		balance, err = b.Balance(name)
	}); submitErr != nil {
		return 0, submitErr
	}
	return balance, err
}

// Balances 所有帳戶的餘額，在同一次迴圈內計算
func (l *LMAXLedger) Balances(ctx context.Context) ([]domain.AccountBalance, error) {
	var balances []domain.AccountBalance
	if err := l.submit(ctx, func(b *domain.Bank) {
		balances = b.Balances()
	}); err != nil {
		return nil, err
	}
	return balances, nil
}

// Transactions 帳戶的交易紀錄
func (l *LMAXLedger) Transactions(ctx context.Context, name string) ([]domain.Transaction, error) {
	var (
		txs []domain.Transaction
		err error
	)
	if submitErr := l.submit(ctx, func(b *domain.Bank) {
		txs, err = b.Transactions(name)
	}); submitErr != nil {
		return nil, submitErr
	}
	return txs, err
}

// Size 帳戶數與交易數
func (l *LMAXLedger) Size(ctx context.Context) (int, int, error) {
	var accounts, transactions int
	if err := l.submit(ctx, func(b *domain.Bank) {
		accounts, transactions = b.Size()
	}); err != nil {
		return 0, 0, err
	}
	return accounts, transactions, nil
}

var _ usecase.Ledger = (*LMAXLedger)(nil)
