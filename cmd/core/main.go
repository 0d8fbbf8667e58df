package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/grpc"
	rest_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/rest"
	memory_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/config"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/logging"
	"github.com/JoeShih716/go-mem-bank/pkg/metrics"
	prom_metrics "github.com/JoeShih716/go-mem-bank/pkg/metrics/prometheus"
)

func main() {
	os.Exit(realMain())
}

// realMain 回傳 exit code，讓 defer 的 logger.Sync 在離開前執行
func realMain() int {
	// 1. 載入設定
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	// 2. 初始化 Logger
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return 1
	}
	logger.Info("server exited")
	return 0
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Metrics
	var collector metrics.Collector = metrics.NoOpCollector{}
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		promCollector := prom_metrics.NewPrometheusCollector(cfg.Metrics.Namespace)
		if err := promCollector.Register(registry); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector = promCollector
	}

	// 4. 建立帳本引擎
	// lmax 迴圈用獨立的 context，等兩個 server 都關閉後才停止，確保進行中的請求能處理完
	ledgerCtx, stopLedger := context.WithCancel(context.Background())
	defer stopLedger()

	bank := domain.NewBank()
	var ledger usecase.Ledger
	var lmax *memory_adapter.LMAXLedger
	switch cfg.Ledger.Engine {
	case config.EngineMutex:
		ledger = memory_adapter.NewMutexLedger(bank)
	case config.EngineLMAX:
		lmax = memory_adapter.NewLMAXLedger(bank, cfg.Ledger.QueueSize)
		lmax.Start(ledgerCtx)
		ledger = lmax
	default:
		return fmt.Errorf("invalid ledger engine %q", cfg.Ledger.Engine)
	}
	logger.Info("ledger ready", zap.String("engine", cfg.Ledger.Engine))

	// 5. 初始化 UseCase
	reporter := usecase.NewBankReporter(ledger, usecase.WithMinorUnits(cfg.MinorUnits()))
	core := usecase.NewCoreUseCase(ledger,
		usecase.WithReporter(reporter),
		usecase.WithMetrics(collector),
		usecase.WithLogger(logger.Named("core")),
	)

	// 6. HTTP Adapter
	routerOpts := []rest_adapter.Option{
		rest_adapter.WithLogger(logger.Named("http")),
		rest_adapter.WithMetrics(collector),
	}
	if cfg.Metrics.Enabled {
		routerOpts = append(routerOpts, rest_adapter.WithMetricsHandler(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		))
	}
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      rest_adapter.NewRouter(core, routerOpts...),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 7. gRPC Adapter
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_adapter.UnaryInterceptor(logger.Named("grpc"), collector)),
	)
	grpc_adapter.RegisterBankServiceServer(grpcServer, grpc_adapter.NewGrpcServer(core))
	reflection.Register(grpcServer) // 方便 gRPC Client 測試 (如 grpcurl)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", cfg.Server.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("starting grpc server", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	// Graceful Shutdown: 收到信號或任一 server 失敗
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()

		err := httpServer.Shutdown(shutdownCtx)
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
		if err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()

	// 最後停止帳本引擎
	stopLedger()
	if lmax != nil {
		<-lmax.Stopped()
	}
	// servers 與迴圈都已停止，可以直接讀 bank
	accounts, transactions := bank.Size()
	logger.Info("ledger stopped",
		zap.Int("accounts", accounts),
		zap.Int("transactions", transactions),
	)
	return err
}
