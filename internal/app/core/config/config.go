package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-bank/pkg/logging"
)

// DefaultPath 預設設定檔路徑，可用 BANK_CONFIG 覆寫
const DefaultPath = "config/config.yaml"

// 帳本引擎種類
const (
	EngineMutex = "mutex"
	EngineLMAX  = "lmax"
)

// Config 服務設定
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Log       logging.Config  `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Reporting ReportingConfig `yaml:"reporting"`
}

// ServerConfig HTTP 與 gRPC 監聽設定
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LedgerConfig 帳本引擎設定
type LedgerConfig struct {
	// Engine: mutex 或 lmax
	Engine string `yaml:"engine"`
	// QueueSize: lmax 輸送帶緩衝大小
	QueueSize int `yaml:"queue_size"`
}

// MetricsConfig 指標設定
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// ReportingConfig 報表設定
type ReportingConfig struct {
	// MinorUnits: 金額顯示的小數位數 (0-8)
	MinorUnits *int32 `yaml:"minor_units"`
}

// Default 回傳預設設定
func Default() Config {
	minorUnits := int32(2)
	return Config{
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":50051",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Ledger: LedgerConfig{
			Engine:    EngineMutex,
			QueueSize: 1000,
		},
		Log: logging.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "bank",
		},
		Reporting: ReportingConfig{
			MinorUnits: &minorUnits,
		},
	}
}

// Load 載入設定
//
// 順序: .env -> YAML 檔 (不存在時使用預設值) -> 環境變數覆寫 -> 驗證
//
// 參數:
//
//	path: 設定檔路徑，空字串時使用 BANK_CONFIG 或 DefaultPath
//
// 回傳:
//
//	Config: 設定
//	error: 讀檔、解析或驗證錯誤
func Load(path string) (Config, error) {
	// .env 不存在不算錯誤
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("BANK_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BANK_HTTP_ADDR"); v != "" {
		c.Server.HTTPAddr = v
	}
	if v := os.Getenv("BANK_GRPC_ADDR"); v != "" {
		c.Server.GRPCAddr = v
	}
	if v := os.Getenv("BANK_LEDGER_ENGINE"); v != "" {
		c.Ledger.Engine = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("LOG_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LOG_DEV %q: %w", v, err)
		}
		c.Log.Development = dev
	}
	return nil
}

// fillDefaults 補全 YAML 留空的欄位
func (c *Config) fillDefaults() {
	d := Default()
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = d.Server.HTTPAddr
	}
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = d.Server.GRPCAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = d.Server.IdleTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Ledger.Engine == "" {
		c.Ledger.Engine = d.Ledger.Engine
	}
	if c.Ledger.QueueSize == 0 {
		c.Ledger.QueueSize = d.Ledger.QueueSize
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Reporting.MinorUnits == nil {
		c.Reporting.MinorUnits = d.Reporting.MinorUnits
	}
}

// Validate 檢查設定值
func (c Config) Validate() error {
	switch c.Ledger.Engine {
	case EngineMutex, EngineLMAX:
	default:
		return fmt.Errorf("unknown ledger engine %q (want %s or %s)", c.Ledger.Engine, EngineMutex, EngineLMAX)
	}
	if c.Ledger.QueueSize < 0 {
		return fmt.Errorf("ledger queue_size must not be negative, got %d", c.Ledger.QueueSize)
	}
	if units := c.MinorUnits(); units < 0 || units > 8 {
		return fmt.Errorf("reporting minor_units must be between 0 and 8, got %d", units)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server shutdown_timeout must not be negative, got %s", c.Server.ShutdownTimeout)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// MinorUnits 金額顯示的小數位數
func (c Config) MinorUnits() int32 {
	if c.Reporting.MinorUnits == nil {
		return 2
	}
	return *c.Reporting.MinorUnits
}
