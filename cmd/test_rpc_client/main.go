package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/known/structpb"

	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-mem-bank/pkg/grpc"
	"github.com/JoeShih716/go-mem-bank/pkg/logging"
)

func main() {
	os.Exit(realMain())
}

// realMain 回傳 exit code，讓 defer 的 logger.Sync 在離開前執行
func realMain() int {
	target := flag.String("target", "localhost:50051", "gRPC server address")
	total := flag.Int("n", 100000, "number of transfers")
	concurrency := flag.Int("c", 100, "concurrent requests")
	amount := flag.Int64("amount", 1, "amount per transfer")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if err := validateFlags(*total, *concurrency, *amount); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		return 2
	}

	logger, err := logging.New(logging.Config{Level: *logLevel, Format: "console", Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := run(*target, *total, *concurrency, *amount, *timeout, logger); err != nil {
		logger.Error("load test failed", zap.Error(err))
		return 1
	}
	return 0
}

// validateFlags 檢查參數，總金額 amount * total 不可溢位
func validateFlags(total, concurrency int, amount int64) error {
	if total <= 0 {
		return fmt.Errorf("-n must be positive, got %d", total)
	}
	if concurrency <= 0 {
		return fmt.Errorf("-c must be positive, got %d", concurrency)
	}
	if amount <= 0 {
		return fmt.Errorf("-amount must be positive, got %d", amount)
	}
	if amount > math.MaxInt64/int64(total) {
		return fmt.Errorf("-amount %d * -n %d overflows int64", amount, total)
	}
	return nil
}

func run(target string, total, concurrency int, amount int64, timeout time.Duration, logger *zap.Logger) error {
	pool := grpc.NewPool(
		grpc.WithLogger(logger),
		grpc.WithInterceptor(grpc.LoggingInterceptor(logger)),
	)
	defer pool.Close()

	conn, err := pool.GetConnection(target)
	if err != nil {
		return err
	}
	client := grpc_adapter.NewBankServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// 每次執行都用新的帳戶，避免與上一次的結果混在一起
	source := "load-src-" + uuid.NewString()
	sink := "load-dst-" + uuid.NewString()
	for _, name := range []string{source, sink} {
		if _, err := client.CreateAccount(ctx, mustStruct(map[string]any{"name": name})); err != nil {
			return fmt.Errorf("create account %s: %w", name, err)
		}
	}

	funded := amount * int64(total)
	if _, err := client.AddFunds(ctx, mustStruct(map[string]any{
		"name":   source,
		"amount": strconv.FormatInt(funded, 10),
	})); err != nil {
		return fmt.Errorf("fund source: %w", err)
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	startTime := time.Now()
	for i := 0; i < total; i++ {
		idx := i
		g.Go(func() error {
			_, err := client.MoveFunds(gctx, mustStruct(map[string]any{
				"name_from": source,
				"name_to":   sink,
				"amount":    strconv.FormatInt(amount, 10),
			}))
			if err != nil {
				// 單筆失敗不中斷整個測試，只計數
				if failed.Add(1) == 1 || idx%10000 == 0 {
					logger.Warn("transfer failed", zap.Int("index", idx), zap.Error(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(startTime)

	logger.Info("load test finished",
		zap.Int("requests", total),
		zap.Int64("failed", failed.Load()),
		zap.Duration("elapsed", elapsed),
		zap.Float64("tps", float64(total)/elapsed.Seconds()),
	)

	// 驗證：兩個帳戶餘額總和必須等於存入的金額
	srcBalance, err := balanceOf(ctx, client, source)
	if err != nil {
		return err
	}
	dstBalance, err := balanceOf(ctx, client, sink)
	if err != nil {
		return err
	}
	if srcBalance+dstBalance != funded {
		return fmt.Errorf("money not conserved: %d + %d != %d", srcBalance, dstBalance, funded)
	}
	logger.Info("balances verified",
		zap.Int64("source", srcBalance),
		zap.Int64("sink", dstBalance),
	)
	return nil
}

func balanceOf(ctx context.Context, client *grpc_adapter.BankServiceClient, name string) (int64, error) {
	resp, err := client.GetAccount(ctx, mustStruct(map[string]any{"name": name}))
	if err != nil {
		return 0, fmt.Errorf("get account %s: %w", name, err)
	}
	return strconv.ParseInt(resp.GetFields()["balance"].GetStringValue(), 10, 64)
}

func mustStruct(fields map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		panic(err)
	}
	return s
}
