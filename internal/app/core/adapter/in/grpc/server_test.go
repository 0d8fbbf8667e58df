package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase/mocks"
	grpcpool "github.com/JoeShih716/go-mem-bank/pkg/grpc"
	"github.com/JoeShih716/go-mem-bank/pkg/metrics"
)

const bufSize = 1024 * 1024

// startServer 在 bufconn 上啟動服務，回傳透過連線池建立的客戶端
func startServer(t *testing.T, ledger usecase.Ledger) *BankServiceClient {
	t.Helper()
	lis := bufconn.Listen(bufSize)

	s := grpc.NewServer(grpc.UnaryInterceptor(UnaryInterceptor(zap.NewNop(), metrics.NoOpCollector{})))
	RegisterBankServiceServer(s, NewGrpcServer(usecase.NewCoreUseCase(ledger)))
	go func() {
		_ = s.Serve(lis)
	}()

	pool := grpcpool.NewPool(grpcpool.WithInterceptor(grpcpool.LoggingInterceptor(zap.NewNop())))
	conn, err := pool.GetConnection("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = pool.Close()
		s.Stop()
	})
	return NewBankServiceClient(conn)
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestGrpcServer_EndToEnd(t *testing.T) {
	client := startServer(t, memory.NewMutexLedger(nil))
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		resp, err := client.CreateAccount(ctx, mustStruct(t, map[string]any{"name": name}))
		require.NoError(t, err)
		assert.Equal(t, name, resp.GetFields()["name"].GetStringValue())
	}

	tx, err := client.AddFunds(ctx, mustStruct(t, map[string]any{"name": "A", "amount": "50"}))
	require.NoError(t, err)
	assert.Equal(t, "50", tx.GetFields()["amount"].GetStringValue())
	assert.Equal(t, "A", tx.GetFields()["account_name"].GetStringValue())
	assert.Equal(t, "deposit", tx.GetFields()["type"].GetStringValue())

	move, err := client.MoveFunds(ctx, mustStruct(t, map[string]any{
		"name_from": "A",
		"name_to":   "B",
		"amount":    "20",
	}))
	require.NoError(t, err)
	debit := move.GetFields()["debit"].GetStructValue()
	credit := move.GetFields()["credit"].GetStructValue()
	assert.Equal(t, "-20", debit.GetFields()["amount"].GetStringValue())
	assert.Equal(t, "20", credit.GetFields()["amount"].GetStringValue())
	assert.Equal(t, debit.GetFields()["date"].GetStringValue(), credit.GetFields()["date"].GetStringValue())

	a, err := client.GetAccount(ctx, mustStruct(t, map[string]any{"name": "A"}))
	require.NoError(t, err)
	assert.Equal(t, "30", a.GetFields()["balance"].GetStringValue())

	b, err := client.GetAccount(ctx, mustStruct(t, map[string]any{"name": "B"}))
	require.NoError(t, err)
	assert.Equal(t, "20", b.GetFields()["balance"].GetStringValue())
}

func TestGrpcServer_ErrorCodes(t *testing.T) {
	client := startServer(t, memory.NewMutexLedger(nil))
	ctx := context.Background()

	_, err := client.CreateAccount(ctx, mustStruct(t, map[string]any{"name": "A"}))
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{"blank name", func() error {
			_, err := client.CreateAccount(ctx, mustStruct(t, map[string]any{"name": " "}))
			return err
		}, codes.InvalidArgument},
		{"missing name", func() error {
			_, err := client.CreateAccount(ctx, mustStruct(t, map[string]any{}))
			return err
		}, codes.InvalidArgument},
		{"name not a string", func() error {
			_, err := client.CreateAccount(ctx, mustStruct(t, map[string]any{"name": 7}))
			return err
		}, codes.InvalidArgument},
		{"duplicate", func() error {
			_, err := client.CreateAccount(ctx, mustStruct(t, map[string]any{"name": "A"}))
			return err
		}, codes.AlreadyExists},
		{"not found", func() error {
			_, err := client.GetAccount(ctx, mustStruct(t, map[string]any{"name": "nobody"}))
			return err
		}, codes.NotFound},
		{"insufficient", func() error {
			_, err := client.AddFunds(ctx, mustStruct(t, map[string]any{"name": "A", "amount": "-1"}))
			return err
		}, codes.FailedPrecondition},
		{"number amount", func() error {
			_, err := client.AddFunds(ctx, mustStruct(t, map[string]any{"name": "A", "amount": 50}))
			return err
		}, codes.InvalidArgument},
		{"float literal amount", func() error {
			_, err := client.AddFunds(ctx, mustStruct(t, map[string]any{"name": "A", "amount": "50.0"}))
			return err
		}, codes.InvalidArgument},
		{"missing amount", func() error {
			_, _, err := moveFunds(ctx, client, mustStruct(t, map[string]any{"name_from": "A", "name_to": "A"}))
			return err
		}, codes.InvalidArgument},
		{"move unknown destination", func() error {
			_, _, err := moveFunds(ctx, client, mustStruct(t, map[string]any{"name_from": "A", "name_to": "nobody", "amount": "1"}))
			return err
		}, codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(tt.call()))
		})
	}
}

func moveFunds(ctx context.Context, client *BankServiceClient, req *structpb.Struct) (*structpb.Struct, *structpb.Struct, error) {
	resp, err := client.MoveFunds(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return resp.GetFields()["debit"].GetStructValue(), resp.GetFields()["credit"].GetStructValue(), nil
}

func TestGrpcServer_InternalErrorHidesDetails(t *testing.T) {
	ledger := mocks.NewLedger(t)
	ledger.On("GetAccount", mock.Anything, "A").Return(nil, errors.New("engine exploded"))

	client := startServer(t, ledger)
	_, err := client.GetAccount(context.Background(), mustStruct(t, map[string]any{"name": "A"}))

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.NotContains(t, st.Message(), "exploded")
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{domain.ErrInvalidName, codes.InvalidArgument},
		{domain.ErrNonIntegerAmount, codes.InvalidArgument},
		{domain.ErrDuplicateAccount, codes.AlreadyExists},
		{domain.ErrAccountNotFound, codes.NotFound},
		{domain.ErrInsufficientFunds, codes.FailedPrecondition},
		{domain.ErrLedgerClosed, codes.Unavailable},
		{context.Canceled, codes.Canceled},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("other"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(toStatus(tt.err)))
		})
	}
}
