package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
		domain   bool
	}{
		{"nil error", nil, "ok", false},
		{"invalid name", ErrInvalidName, "invalid_name", true},
		{"wrapped duplicate", fmt.Errorf("create: %w", ErrDuplicateAccount), "duplicate_account", true},
		{"not found", ErrAccountNotFound, "account_not_found", true},
		{"non integer", ErrNonIntegerAmount, "non_integer_amount", true},
		{"insufficient", fmt.Errorf("%w: A", ErrInsufficientFunds), "insufficient_funds", true},
		{"closed", ErrLedgerClosed, "ledger_closed", false},
		{"canceled", context.Canceled, "canceled", false},
		{"deadline", fmt.Errorf("submit: %w", context.DeadlineExceeded), "canceled", false},
		{"custom error", errors.New("disk on fire"), "internal", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
			assert.Equal(t, tt.domain, IsDomainError(tt.err))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		literal string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"50", 50, false},
		{"-10", -10, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"50.0", 0, true},
		{"0.5", 0, true},
		{"5e1", 0, true},
		{"1E2", 0, true},
		{"", 0, true},
		{"NaN", 0, true},
		{"9223372036854775808", 0, true},
		{" 5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			got, err := ParseAmount(tt.literal)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNonIntegerAmount)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
