package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName gRPC 服務完整名稱
const ServiceName = "bank.v1.BankService"

// 完整方法名稱
const (
	CreateAccountMethod = "/" + ServiceName + "/CreateAccount"
	GetAccountMethod    = "/" + ServiceName + "/GetAccount"
	AddFundsMethod      = "/" + ServiceName + "/AddFunds"
	MoveFundsMethod     = "/" + ServiceName + "/MoveFunds"
)

// BankServiceServer 服務端介面，請求與回應都是 google.protobuf.Struct
type BankServiceServer interface {
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddFunds(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MoveFunds(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterBankServiceServer 註冊服務
func RegisterBankServiceServer(s grpc.ServiceRegistrar, srv BankServiceServer) {
	s.RegisterService(&BankServiceDesc, srv)
}

func unaryHandler(method string, call func(BankServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BankServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(BankServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BankServiceDesc 手寫的 grpc.ServiceDesc (沒有 .proto 產生的程式碼)
var BankServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BankServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateAccount",
			Handler:    unaryHandler(CreateAccountMethod, BankServiceServer.CreateAccount),
		},
		{
			MethodName: "GetAccount",
			Handler:    unaryHandler(GetAccountMethod, BankServiceServer.GetAccount),
		},
		{
			MethodName: "AddFunds",
			Handler:    unaryHandler(AddFundsMethod, BankServiceServer.AddFunds),
		},
		{
			MethodName: "MoveFunds",
			Handler:    unaryHandler(MoveFundsMethod, BankServiceServer.MoveFunds),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bank/v1/bank.proto",
}

// BankServiceClient 客戶端
type BankServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewBankServiceClient 建立客戶端
func NewBankServiceClient(cc grpc.ClientConnInterface) *BankServiceClient {
	return &BankServiceClient{cc: cc}
}

func (c *BankServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAccount {name} -> {name}
func (c *BankServiceClient) CreateAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CreateAccountMethod, in, opts...)
}

// GetAccount {name} -> {name, balance}
func (c *BankServiceClient) GetAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetAccountMethod, in, opts...)
}

// AddFunds {name, amount} -> transaction
func (c *BankServiceClient) AddFunds(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AddFundsMethod, in, opts...)
}

// MoveFunds {name_from, name_to, amount} -> {debit, credit}
func (c *BankServiceClient) MoveFunds(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MoveFundsMethod, in, opts...)
}
