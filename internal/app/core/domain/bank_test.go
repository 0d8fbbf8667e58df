package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBank(t *testing.T) *Bank {
	t.Helper()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return NewBank(WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
}

func TestNewBankIsEmpty(t *testing.T) {
	b := NewBank()
	accounts, transactions := b.Size()
	assert.Zero(t, accounts)
	assert.Zero(t, transactions)
	assert.Empty(t, b.Accounts())
	assert.Empty(t, b.Log())
}

func TestCreateAccount(t *testing.T) {
	t.Run("Create then get", func(t *testing.T) {
		b := newTestBank(t)
		created, err := b.CreateAccount("Test")
		require.NoError(t, err)

		got, err := b.GetAccount("Test")
		require.NoError(t, err)
		assert.Same(t, created, got)
		assert.Equal(t, "Test", got.Name())

		balance, err := b.Balance("Test")
		require.NoError(t, err)
		assert.Zero(t, balance)
	})

	t.Run("Blank names", func(t *testing.T) {
		b := newTestBank(t)
		for _, name := range []string{"", " ", "\t\n"} {
			_, err := b.CreateAccount(name)
			assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
		}
		assert.Empty(t, b.Accounts())
	})

	t.Run("Duplicate is rejected", func(t *testing.T) {
		b := newTestBank(t)
		first, err := b.CreateAccount("A")
		require.NoError(t, err)

		_, err = b.CreateAccount("A")
		assert.ErrorIs(t, err, ErrDuplicateAccount)

		got, err := b.GetAccount("A")
		require.NoError(t, err)
		assert.Same(t, first, got)
		assert.Len(t, b.Accounts(), 1)
	})

	t.Run("Accounts keep creation order", func(t *testing.T) {
		b := newTestBank(t)
		for _, name := range []string{"charlie", "alpha", "bravo"} {
			_, err := b.CreateAccount(name)
			require.NoError(t, err)
		}
		var names []string
		for _, a := range b.Accounts() {
			names = append(names, a.Name())
		}
		assert.Equal(t, []string{"charlie", "alpha", "bravo"}, names)
	})
}

func TestGetAccountNotFound(t *testing.T) {
	b := newTestBank(t)
	_, err := b.CreateAccount("Name 1")
	require.NoError(t, err)

	_, err = b.GetAccount("Name 2")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = b.Balance("Name 2")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = b.Transactions("Name 2")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAddFunds(t *testing.T) {
	t.Run("Non-negative amounts", func(t *testing.T) {
		for _, amount := range []int64{0, 1, 50, math.MaxInt64} {
			b := newTestBank(t)
			_, err := b.CreateAccount("Test")
			require.NoError(t, err)

			tx, err := b.AddFunds("Test", amount)
			require.NoError(t, err)

			log := b.Log()
			require.Len(t, log, 1)
			assert.Equal(t, amount, log[0].Amount)
			assert.Equal(t, tx, log[0])
			assert.Equal(t, "Test", tx.AccountName())
			assert.Equal(t, TransactionTypeDeposit, tx.Type)
			assert.NotEqual(t, uuid.Nil, tx.ID)

			balance, err := b.Balance("Test")
			require.NoError(t, err)
			assert.Equal(t, amount, balance)
		}
	})

	t.Run("Multiple deposits", func(t *testing.T) {
		b := newTestBank(t)
		_, err := b.CreateAccount("Test")
		require.NoError(t, err)

		_, err = b.AddFunds("Test", 50)
		require.NoError(t, err)
		_, err = b.AddFunds("Test", 25)
		require.NoError(t, err)

		log := b.Log()
		require.Len(t, log, 2)
		assert.ElementsMatch(t, []int64{50, 25}, []int64{log[0].Amount, log[1].Amount})
		balance, _ := b.Balance("Test")
		assert.Equal(t, int64(75), balance)
	})

	t.Run("Withdraw within balance", func(t *testing.T) {
		b := newTestBank(t)
		_, _ = b.CreateAccount("Test")
		_, err := b.AddFunds("Test", 50)
		require.NoError(t, err)

		tx, err := b.AddFunds("Test", -50)
		require.NoError(t, err)
		assert.Equal(t, TransactionTypeWithdraw, tx.Type)

		balance, _ := b.Balance("Test")
		assert.Zero(t, balance)
	})

	t.Run("Overdraw from zero", func(t *testing.T) {
		for _, amount := range []int64{-1, -10, math.MinInt64} {
			b := newTestBank(t)
			_, _ = b.CreateAccount("Test")

			_, err := b.AddFunds("Test", amount)
			assert.ErrorIs(t, err, ErrInsufficientFunds)
			assert.Empty(t, b.Log())
		}
	})

	t.Run("Unknown account", func(t *testing.T) {
		b := newTestBank(t)
		_, err := b.AddFunds("no-account", 3)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.Empty(t, b.Log())
	})

	t.Run("Balance overflow", func(t *testing.T) {
		b := newTestBank(t)
		_, _ = b.CreateAccount("Test")
		_, err := b.AddFunds("Test", math.MaxInt64)
		require.NoError(t, err)

		_, err = b.AddFunds("Test", 1)
		assert.ErrorIs(t, err, ErrNonIntegerAmount)
		assert.Len(t, b.Log(), 1)
	})
}

func TestMoveFunds(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		b := newTestBank(t)
		_, _ = b.CreateAccount("A")
		_, _ = b.CreateAccount("B")
		_, err := b.AddFunds("A", 50)
		require.NoError(t, err)

		debit, credit, err := b.MoveFunds("A", "B", 20)
		require.NoError(t, err)

		assert.Equal(t, "A", debit.AccountName())
		assert.Equal(t, int64(-20), debit.Amount)
		assert.Equal(t, "B", credit.AccountName())
		assert.Equal(t, int64(20), credit.Amount)
		assert.Equal(t, debit.Date, credit.Date)
		assert.NotEqual(t, debit.ID, credit.ID)
		assert.Equal(t, TransactionTypeTransfer, debit.Type)

		a, _ := b.Balance("A")
		bb, _ := b.Balance("B")
		assert.Equal(t, int64(30), a)
		assert.Equal(t, int64(20), bb)
		assert.Len(t, b.Log(), 3)
	})

	t.Run("Insufficient funds appends nothing", func(t *testing.T) {
		b := newTestBank(t)
		_, _ = b.CreateAccount("A")
		_, _ = b.CreateAccount("B")

		_, _, err := b.MoveFunds("A", "B", 25)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Empty(t, b.Log())
	})

	t.Run("Missing destination", func(t *testing.T) {
		b := newTestBank(t)
		_, _ = b.CreateAccount("A")
		_, _ = b.AddFunds("A", 100)

		_, _, err := b.MoveFunds("A", "DoesntExist", 25)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.Len(t, b.Log(), 1)
		balance, _ := b.Balance("A")
		assert.Equal(t, int64(100), balance)
	})

	t.Run("Missing source", func(t *testing.T) {
		b := newTestBank(t)
		_, _ = b.CreateAccount("A")

		_, _, err := b.MoveFunds("DoesntExist", "A", 25)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.Empty(t, b.Log())
	})

	t.Run("Negative amount checks the reversed leg", func(t *testing.T) {
		b := newTestBank(t)
		_, _ = b.CreateAccount("A")
		_, _ = b.CreateAccount("B")

		_, _, err := b.MoveFunds("A", "B", -5)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Empty(t, b.Log())

		_, _ = b.AddFunds("B", 5)
		_, _, err = b.MoveFunds("A", "B", -5)
		require.NoError(t, err)
		a, _ := b.Balance("A")
		bb, _ := b.Balance("B")
		assert.Equal(t, int64(5), a)
		assert.Zero(t, bb)
	})

	t.Run("Same account", func(t *testing.T) {
		b := newTestBank(t)
		_, _ = b.CreateAccount("A")
		_, _, err := b.MoveFunds("A", "A", 10)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		_, _ = b.AddFunds("A", 10)
		_, _, err = b.MoveFunds("A", "A", 10)
		require.NoError(t, err)
		balance, _ := b.Balance("A")
		assert.Equal(t, int64(10), balance)
		assert.Len(t, b.Log(), 3)
	})

	t.Run("Min int64 cannot be negated", func(t *testing.T) {
		b := newTestBank(t)
		_, _ = b.CreateAccount("A")
		_, _ = b.CreateAccount("B")
		_, _, err := b.MoveFunds("A", "B", math.MinInt64)
		assert.ErrorIs(t, err, ErrNonIntegerAmount)
		assert.Empty(t, b.Log())
	})
}

func TestBalanceIsSumOfTransactions(t *testing.T) {
	b := newTestBank(t)
	_, _ = b.CreateAccount("A")
	_, _ = b.CreateAccount("B")

	steps := []func() error{
		func() error { _, err := b.AddFunds("A", 100); return err },
		func() error { _, _, err := b.MoveFunds("A", "B", 40); return err },
		func() error { _, err := b.AddFunds("B", -15); return err },
		func() error { _, _, err := b.MoveFunds("B", "A", 1000); return err },
		func() error { _, err := b.AddFunds("A", 7); return err },
	}
	for _, step := range steps {
		_ = step()
		for _, name := range []string{"A", "B"} {
			txs, err := b.Transactions(name)
			require.NoError(t, err)
			var sum int64
			for _, tx := range txs {
				sum += tx.Amount
			}
			balance, err := b.Balance(name)
			require.NoError(t, err)
			assert.Equal(t, sum, balance, "account %s", name)
			assert.GreaterOrEqual(t, balance, int64(0))
		}
	}
}

func TestBalancesMatchPerAccountBalance(t *testing.T) {
	b := newTestBank(t)
	for _, name := range []string{"C", "A", "B"} {
		_, err := b.CreateAccount(name)
		require.NoError(t, err)
	}
	_, err := b.AddFunds("A", 100)
	require.NoError(t, err)
	_, _, err = b.MoveFunds("A", "C", 30)
	require.NoError(t, err)

	balances := b.Balances()
	require.Len(t, balances, 3)
	for i, want := range []string{"C", "A", "B"} {
		assert.Equal(t, want, balances[i].Account.Name())
		balance, err := b.Balance(want)
		require.NoError(t, err)
		assert.Equal(t, balance, balances[i].Balance)
	}
	assert.Empty(t, NewBank().Balances())
}

func TestEndToEndScenario(t *testing.T) {
	b := newTestBank(t)
	_, err := b.CreateAccount("A")
	require.NoError(t, err)
	_, err = b.CreateAccount("B")
	require.NoError(t, err)
	_, err = b.AddFunds("A", 50)
	require.NoError(t, err)
	_, _, err = b.MoveFunds("A", "B", 20)
	require.NoError(t, err)

	a, _ := b.Balance("A")
	bb, _ := b.Balance("B")
	assert.Equal(t, int64(30), a)
	assert.Equal(t, int64(20), bb)
	_, transactions := b.Size()
	assert.Equal(t, 3, transactions)
}
