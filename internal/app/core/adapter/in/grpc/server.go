package grpc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/metrics"
)

// GrpcServer gRPC adapter，與 HTTP adapter 共用同一個 CoreUseCase
type GrpcServer struct {
	core *usecase.CoreUseCase
}

func NewGrpcServer(core *usecase.CoreUseCase) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

// CreateAccount {name} -> {name}
func (s *GrpcServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, err
	}
	account, err := s.core.CreateAccount(ctx, name)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{"name": account.Name()})
}

// GetAccount {name} -> {name, balance}
func (s *GrpcServer) GetAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, err
	}
	result, err := s.core.GetAccount(ctx, name)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		"name":    result.Account.Name(),
		"balance": strconv.FormatInt(result.Balance, 10),
	})
}

// AddFunds {name, amount} -> transaction
func (s *GrpcServer) AddFunds(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, err
	}
	amount, err := amountField(req)
	if err != nil {
		return nil, toStatus(err)
	}

	tx, err := s.core.AddFunds(ctx, name, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(transactionFields(tx))
}

// MoveFunds {name_from, name_to, amount} -> {debit, credit}
func (s *GrpcServer) MoveFunds(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	from, err := stringField(req, "name_from")
	if err != nil {
		return nil, err
	}
	to, err := stringField(req, "name_to")
	if err != nil {
		return nil, err
	}
	amount, err := amountField(req)
	if err != nil {
		return nil, toStatus(err)
	}

	debit, credit, err := s.core.MoveFunds(ctx, from, to, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		"debit":  transactionFields(debit),
		"credit": transactionFields(credit),
	})
}

// UnaryInterceptor 每個呼叫記錄一行 log 與 metrics
func UnaryInterceptor(logger *zap.Logger, collector metrics.Collector) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		elapsed := time.Since(start)
		collector.RecordGRPCRequest(info.FullMethod, code.String(), elapsed)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", elapsed),
		}
		if code == codes.Internal || code == codes.Unknown {
			logger.Error("grpc request", append(fields, zap.Error(err))...)
		} else {
			logger.Info("grpc request", fields...)
		}
		return resp, err
	}
}

// toStatus 業務錯誤 -> gRPC 狀態碼，其餘錯誤一律 Internal 且不回傳內部訊息
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrInvalidName), errors.Is(err, domain.ErrNonIntegerAmount):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrDuplicateAccount):
		code = codes.AlreadyExists
	case errors.Is(err, domain.ErrAccountNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrLedgerClosed):
		code = codes.Unavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

// stringField 讀取字串欄位，不存在時為空字串
func stringField(req *structpb.Struct, key string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", key)
	}
	return s.StringValue, nil
}

// amountField int64 依 protobuf JSON 慣例以字串傳遞；
// NumberValue 是 double，無法區分 50 與 50.0，一律視為非整數
func amountField(req *structpb.Struct) (int64, error) {
	v, ok := req.GetFields()["amount"]
	if !ok {
		return 0, fmt.Errorf("%w: amount is required", domain.ErrNonIntegerAmount)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return 0, fmt.Errorf("%w: amount must be an integer literal string", domain.ErrNonIntegerAmount)
	}
	return domain.ParseAmount(s.StringValue)
}

func transactionFields(tx domain.Transaction) map[string]any {
	return map[string]any{
		"id":           tx.ID.String(),
		"account_name": tx.AccountName(),
		"amount":       strconv.FormatInt(tx.Amount, 10),
		"date":         tx.Date.Format(time.RFC3339Nano),
		"type":         tx.Type.String(),
	}
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

var _ BankServiceServer = (*GrpcServer)(nil)
