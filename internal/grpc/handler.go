// Package grpc serves the session cart as storefront.v1.CartService.
package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Metadata keys a caller may set instead of, or alongside, the request fields.
const (
	SessionIDKey = "session-id"
	RequestIDKey = "request-id"
)

type CartServer struct {
	sessions *session.Registry
}

func NewCartServer(sessions *session.Registry) *CartServer {
	return &CartServer{sessions: sessions}
}

// NewServer builds a gRPC server with tracing and request logging and registers srv.
func NewServer(srv CartServiceServer, log zerolog.Logger) *grpc.Server {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(loggingInterceptor(log)),
	)
	RegisterCartServiceServer(s, srv)
	return s
}

func loggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		l := logger.WithTrace(ctx, log)
		event := l.Info()
		if code := status.Code(err); code == codes.Internal || code == codes.Unknown {
			event = l.Error().Err(err)
		}
		event.
			Str("request_id", metadataValue(ctx, RequestIDKey)).
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Msg("grpc request completed")
		return resp, err
	}
}

func metadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

// session resolves the request's session, falling back to the session-id metadata.
func (s *CartServer) session(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		id = metadataValue(ctx, SessionIDKey)
	}
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	return s.sessions.Get(ctx, id), nil
}

func (s *CartServer) GetCart(ctx context.Context, req *GetCartRequest) (*CartResponse, error) {
	sess, err := s.session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	return &CartResponse{Cart: sess.Cart.State().Cart}, nil
}

func (s *CartServer) AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	sess, err := s.session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Cart.AddToCart(ctx, req.ProductID, req.Quantity); err != nil {
		return nil, toStatus(err)
	}
	return &CartResponse{Cart: sess.Cart.State().Cart}, nil
}

func (s *CartServer) UpdateItem(ctx context.Context, req *UpdateItemRequest) (*CartResponse, error) {
	if req.ItemID == "" {
		return nil, status.Error(codes.InvalidArgument, "item_id is required")
	}
	sess, err := s.session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Cart.UpdateCartItem(ctx, req.ItemID, req.Quantity); err != nil {
		return nil, toStatus(err)
	}
	return &CartResponse{Cart: sess.Cart.State().Cart}, nil
}

func (s *CartServer) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error) {
	if req.ItemID == "" {
		return nil, status.Error(codes.InvalidArgument, "item_id is required")
	}
	sess, err := s.session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Cart.RemoveFromCart(ctx, req.ItemID); err != nil {
		return nil, toStatus(err)
	}
	return &CartResponse{Cart: sess.Cart.State().Cart}, nil
}

func (s *CartServer) ClearCart(ctx context.Context, req *ClearCartRequest) (*CartResponse, error) {
	sess, err := s.session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	sess.Cart.ClearCart(ctx)
	return &CartResponse{Cart: sess.Cart.State().Cart}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrItemNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrOutOfStock), errors.Is(err, domain.ErrNoCartFound):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "cart operation failed: %v", err)
	}
}
