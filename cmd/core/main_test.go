package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/config"
)

func TestRealMain_ListenFailureReturnsExitCode(t *testing.T) {
	t.Setenv("BANK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BANK_HTTP_ADDR", "127.0.0.1:0")
	t.Setenv("BANK_GRPC_ADDR", "127.0.0.1:-1")
	t.Setenv("LOG_LEVEL", "error")

	assert.Equal(t, 1, realMain())
}

func TestRun_InvalidEngine(t *testing.T) {
	cfg := config.Default()
	cfg.Ledger.Engine = "abacus"

	err := run(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "invalid ledger engine")
}
