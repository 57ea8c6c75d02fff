package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/storefront/internal/core/domain"
)

const managementServiceName = "storefront.management.v1.ManagementService"

const (
	updateOrderStatusMethod = "/" + managementServiceName + "/UpdateOrderStatus"
	finalizeOrderMethod     = "/" + managementServiceName + "/FinalizeOrder"
	listSalesMethod         = "/" + managementServiceName + "/ListSales"
)

type UpdateOrderStatusRequest struct {
	Token  string `json:"token"`
	Status string `json:"status"`
}

type FinalizeOrderRequest struct {
	Token string `json:"token"`
}

type ListSalesRequest struct{}

type ManagementServer interface {
	UpdateOrderStatus(context.Context, *UpdateOrderStatusRequest) (*OrderView, error)
	FinalizeOrder(context.Context, *FinalizeOrderRequest) (*FinalizeView, error)
	ListSales(context.Context, *ListSalesRequest) (*SalesView, error)
}

type GRPCHandler struct {
	mgmt *Management
	auth *TokenVerifier
}

func NewGRPCHandler(mgmt *Management, auth *TokenVerifier) *GRPCHandler {
	return &GRPCHandler{mgmt: mgmt, auth: auth}
}

// Register mounts the management service and the standard health service.
func (h *GRPCHandler) Register(s *grpc.Server) *health.Server {
	s.RegisterService(&managementServiceDesc, h)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(managementServiceName, healthpb.HealthCheckResponse_SERVING)
	return hs
}

func (h *GRPCHandler) session(ctx context.Context) (domain.Session, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	var header string
	if v := md.Get("authorization"); len(v) > 0 {
		header = v[0]
	}
	sess, err := h.auth.ParseSession(header)
	if err != nil {
		return domain.Session{}, status.Error(codes.Unauthenticated, err.Error())
	}
	if !sess.IsOperator() {
		return domain.Session{}, status.Error(codes.PermissionDenied, ErrForbidden.Error())
	}
	return sess, nil
}

func (h *GRPCHandler) UpdateOrderStatus(ctx context.Context, req *UpdateOrderStatusRequest) (*OrderView, error) {
	sess, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Token) == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}
	view, err := h.mgmt.UpdateStatus(ctx, sess, req.Token, req.Status)
	if err != nil {
		return nil, grpcError(err)
	}
	return &view, nil
}

func (h *GRPCHandler) FinalizeOrder(ctx context.Context, req *FinalizeOrderRequest) (*FinalizeView, error) {
	sess, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Token) == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}
	view, err := h.mgmt.Finalize(ctx, sess, req.Token)
	if err != nil {
		return nil, grpcError(err)
	}
	return &view, nil
}

func (h *GRPCHandler) ListSales(ctx context.Context, _ *ListSalesRequest) (*SalesView, error) {
	sess, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	view, err := h.mgmt.Sales(ctx, sess)
	if err != nil {
		return nil, grpcError(err)
	}
	return &view, nil
}

var managementServiceDesc = grpc.ServiceDesc{
	ServiceName: managementServiceName,
	HandlerType: (*ManagementServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "UpdateOrderStatus", Handler: updateOrderStatusHandler},
		{MethodName: "FinalizeOrder", Handler: finalizeOrderHandler},
		{MethodName: "ListSales", Handler: listSalesHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func updateOrderStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateOrderStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ManagementServer).UpdateOrderStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: updateOrderStatusMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ManagementServer).UpdateOrderStatus(ctx, req.(*UpdateOrderStatusRequest))
	})
}

func finalizeOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FinalizeOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ManagementServer).FinalizeOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: finalizeOrderMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ManagementServer).FinalizeOrder(ctx, req.(*FinalizeOrderRequest))
	})
}

func listSalesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListSalesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ManagementServer).ListSales(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listSalesMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ManagementServer).ListSales(ctx, req.(*ListSalesRequest))
	})
}

// ManagementClient calls the management service with the JSON codec.
type ManagementClient struct {
	cc grpc.ClientConnInterface
}

func NewManagementClient(cc grpc.ClientConnInterface) *ManagementClient {
	return &ManagementClient{cc: cc}
}

func (c *ManagementClient) UpdateOrderStatus(ctx context.Context, in *UpdateOrderStatusRequest, opts ...grpc.CallOption) (*OrderView, error) {
	out := new(OrderView)
	if err := c.invoke(ctx, updateOrderStatusMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ManagementClient) FinalizeOrder(ctx context.Context, in *FinalizeOrderRequest, opts ...grpc.CallOption) (*FinalizeView, error) {
	out := new(FinalizeView)
	if err := c.invoke(ctx, finalizeOrderMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ManagementClient) ListSales(ctx context.Context, in *ListSalesRequest, opts ...grpc.CallOption) (*SalesView, error) {
	out := new(SalesView)
	if err := c.invoke(ctx, listSalesMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ManagementClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

// WithBearer attaches an operator token to outgoing management calls.
func WithBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}
