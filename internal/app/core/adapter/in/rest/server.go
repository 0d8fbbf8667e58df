package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/metrics"
)

// Handler HTTP adapter：把請求轉成 CoreUseCase 呼叫，再把結果與錯誤轉回 HTTP
type Handler struct {
	core   *usecase.CoreUseCase
	logger *zap.Logger
}

type options struct {
	logger         *zap.Logger
	collector      metrics.Collector
	metricsHandler http.Handler
}

// Option 定義了 Router 的配置選項函數
type Option func(*options)

// WithLogger 設定請求與錯誤日誌
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics 設定 HTTP 指標收集器
func WithMetrics(collector metrics.Collector) Option {
	return func(o *options) {
		o.collector = collector
	}
}

// WithMetricsHandler 掛上 GET /metrics (例如 promhttp.HandlerFor)
func WithMetricsHandler(handler http.Handler) Option {
	return func(o *options) {
		o.metricsHandler = handler
	}
}

// NewHandler 建立 HTTP adapter
func NewHandler(core *usecase.CoreUseCase, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		core:   core,
		logger: logger,
	}
}

// NewRouter 建立 chi router 並掛上所有路由
//
// 路由:
//
//	GET  /health
//	GET  /metrics                    (有設定 WithMetricsHandler 時)
//	GET  /accounts
//	POST /accounts/{name}
//	GET  /accounts/{name}
//	GET  /accounts/{name}/statement
//	POST /money
//	POST /money/move
func NewRouter(core *usecase.CoreUseCase, opts ...Option) http.Handler {
	o := &options{
		logger:    zap.NewNop(),
		collector: metrics.NoOpCollector{},
	}
	for _, opt := range opts {
		opt(o)
	}
	h := NewHandler(core, o.logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(o.logger))
	r.Use(Metrics(o.collector))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)
	if o.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", o.metricsHandler)
	}

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Post("/{name}", h.CreateAccount)
		r.Get("/{name}", h.GetAccount)
		r.Get("/{name}/statement", h.Statement)
	})

	r.Route("/money", func(r chi.Router) {
		r.Post("/", h.AddFunds)
		r.Post("/move", h.MoveFunds)
	})

	return r
}
