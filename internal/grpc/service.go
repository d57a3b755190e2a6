package grpc

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"google.golang.org/grpc"
)

const ServiceName = "storefront.v1.CartService"

type GetCartRequest struct {
	SessionID string `json:"session_id"`
}

type AddItemRequest struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateItemRequest struct {
	SessionID string `json:"session_id"`
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity"`
}

type RemoveItemRequest struct {
	SessionID string `json:"session_id"`
	ItemID    string `json:"item_id"`
}

type ClearCartRequest struct {
	SessionID string `json:"session_id"`
}

type CartResponse struct {
	Cart *domain.Cart `json:"cart"`
}

type CartServiceServer interface {
	GetCart(ctx context.Context, req *GetCartRequest) (*CartResponse, error)
	AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error)
	UpdateItem(ctx context.Context, req *UpdateItemRequest) (*CartResponse, error)
	RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error)
	ClearCart(ctx context.Context, req *ClearCartRequest) (*CartResponse, error)
}

func unaryHandler[Req any](
	method string,
	call func(CartServiceServer, context.Context, *Req) (*CartResponse, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CartServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CartServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCart", Handler: unaryHandler("GetCart", CartServiceServer.GetCart)},
		{MethodName: "AddItem", Handler: unaryHandler("AddItem", CartServiceServer.AddItem)},
		{MethodName: "UpdateItem", Handler: unaryHandler("UpdateItem", CartServiceServer.UpdateItem)},
		{MethodName: "RemoveItem", Handler: unaryHandler("RemoveItem", CartServiceServer.RemoveItem)},
		{MethodName: "ClearCart", Handler: unaryHandler("ClearCart", CartServiceServer.ClearCart)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/cart.proto",
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

// CartClient calls CartService with the JSON codec.
type CartClient struct {
	cc grpc.ClientConnInterface
}

func NewCartClient(cc grpc.ClientConnInterface) *CartClient {
	return &CartClient{cc: cc}
}

func (c *CartClient) invoke(ctx context.Context, method string, in any, opts []grpc.CallOption) (*CartResponse, error) {
	out := new(CartResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartClient) GetCart(ctx context.Context, in *GetCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return c.invoke(ctx, "GetCart", in, opts)
}

func (c *CartClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return c.invoke(ctx, "AddItem", in, opts)
}

func (c *CartClient) UpdateItem(ctx context.Context, in *UpdateItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return c.invoke(ctx, "UpdateItem", in, opts)
}

func (c *CartClient) RemoveItem(ctx context.Context, in *RemoveItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return c.invoke(ctx, "RemoveItem", in, opts)
}

func (c *CartClient) ClearCart(ctx context.Context, in *ClearCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return c.invoke(ctx, "ClearCart", in, opts)
}
