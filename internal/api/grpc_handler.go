package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"storefront-service/internal/catalog"
	"storefront-service/internal/domain"
	"storefront-service/internal/store"
)

// CatalogServiceName is the fully qualified gRPC service name.
const CatalogServiceName = "storefront.v1.Catalog"

// CatalogServer is the server API of the storefront.v1.Catalog service.
// Messages are well-known types so the service needs no generated code:
// products and browse results travel as JSON-shaped structs.
type CatalogServer interface {
	GetProduct(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	BrowseCatalog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckAvailability(context.Context, *structpb.ListValue) (*structpb.ListValue, error)
}

// CatalogServiceDesc describes storefront.v1.Catalog for grpc.Server.RegisterService.
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProduct", Handler: unaryHandler("GetProduct", CatalogServer.GetProduct)},
		{MethodName: "BrowseCatalog", Handler: unaryHandler("BrowseCatalog", CatalogServer.BrowseCatalog)},
		{MethodName: "CheckAvailability", Handler: unaryHandler("CheckAvailability", CatalogServer.CheckAvailability)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/catalog.proto",
}

// RegisterCatalogServer registers srv on s.
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

func unaryHandler[Req, Resp any, PReq interface {
	*Req
}](method string, call func(CatalogServer, context.Context, PReq) (Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + CatalogServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CatalogServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GRPCHandler implements CatalogServer over the product store.
type GRPCHandler struct {
	productStore store.ProductStorer
	pageSize     int
	log          *slog.Logger
}

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(ps store.ProductStorer, pageSize int, logger *slog.Logger) *GRPCHandler {
	return &GRPCHandler{productStore: ps, pageSize: pageSize, log: logger}
}

// --- Helper: Error Mapping ---
func (s *GRPCHandler) mapStoreErrorToGrpcStatus(ctx context.Context, err error, resourceName string, resourceID any) error {
	if errors.Is(err, store.ErrProductNotFound) {
		return status.Errorf(codes.NotFound, "%s with ID %v not found", resourceName, resourceID)
	}
	s.log.ErrorContext(ctx, "store operation failed",
		slog.String("resource", resourceName),
		slog.Any("id", resourceID),
		slog.String("error", err.Error()),
	)
	return status.Errorf(codes.Internal, "Failed to process request for %s ID %v", resourceName, resourceID)
}

func (s *GRPCHandler) GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	productID := req.GetValue()
	if productID <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Product ID must be a positive integer")
	}

	product, err := s.productStore.GetProductByID(ctx, productID)
	if err != nil {
		return nil, s.mapStoreErrorToGrpcStatus(ctx, err, "Product", productID)
	}
	return toStruct(product)
}

// BrowseCatalog accepts {search, category, sort, page} and answers with one page of results.
func (s *GRPCHandler) BrowseCatalog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	page := fields["page"].GetNumberValue()
	if math.IsNaN(page) || math.IsInf(page, 0) || page > math.MaxInt32 {
		return nil, status.Errorf(codes.InvalidArgument, "page must be a finite number no greater than %d", math.MaxInt32)
	}
	if page < 1 {
		page = 1
	}
	q := catalog.Query{
		Search:   fields["search"].GetStringValue(),
		Category: fields["category"].GetStringValue(),
		Sort:     catalog.ParseSortKey(fields["sort"].GetStringValue()),
		Page:     int(page),
		PageSize: s.pageSize,
	}
	if q.Category == "" {
		q.Category = domain.CategoryAll
	}

	products, err := s.productStore.ListProducts(ctx, store.ListProductsParams{})
	if err != nil {
		s.log.ErrorContext(ctx, "error listing products from store", slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "Failed to list products")
	}
	return toStruct(catalog.Apply(products, q))
}

// CheckAvailability takes a list of {product_id, quantity} and reports, per item, whether
// the active catalog can cover the quantity.
func (s *GRPCHandler) CheckAvailability(ctx context.Context, req *structpb.ListValue) (*structpb.ListValue, error) {
	items := req.GetValues()
	if len(items) == 0 {
		return nil, status.Errorf(codes.InvalidArgument, "No items provided for availability check")
	}

	type wanted struct {
		productID int64
		quantity  int32
	}
	requests := make([]wanted, 0, len(items))
	for _, item := range items {
		f := item.GetStructValue().GetFields()
		w := wanted{productID: int64(f["product_id"].GetNumberValue()), quantity: int32(f["quantity"].GetNumberValue())}
		if w.productID <= 0 {
			return nil, status.Errorf(codes.InvalidArgument, "Item contains invalid Product ID: %d", w.productID)
		}
		if w.quantity <= 0 {
			return nil, status.Errorf(codes.InvalidArgument, "Item Product ID %d has invalid required quantity: %d", w.productID, w.quantity)
		}
		requests = append(requests, w)
	}

	products, err := s.productStore.ListProducts(ctx, store.ListProductsParams{})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to fetch products for availability check", slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "Error retrieving product data for availability check")
	}
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]any, 0, len(requests))
	for _, w := range requests {
		entry := map[string]any{"product_id": float64(w.productID), "available": false}
		p, found := byID[w.productID]
		switch {
		case !found:
			entry["reason"] = "Product not found."
		case p.Stock < w.quantity:
			entry["name"] = p.Name
			entry["price"] = p.Price.String()
			entry["available_quantity"] = float64(p.Stock)
			entry["reason"] = "Insufficient stock."
		default:
			entry["name"] = p.Name
			entry["price"] = p.Price.String()
			entry["available_quantity"] = float64(p.Stock)
			entry["available"] = true
		}
		out = append(out, entry)
	}

	list, err := structpb.NewList(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to encode availability: %v", err)
	}
	return list, nil
}

// toStruct converts a JSON-tagged value into a structpb.Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to encode response: %v", err)
	}
	return out, nil
}

// UnaryLoggingInterceptor logs every unary call with its duration and status code.
func UnaryLoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "grpc request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// UnaryRecoveryInterceptor turns a handler panic into codes.Internal so one bad
// request cannot take the server down.
func UnaryRecoveryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "grpc handler panicked",
					slog.String("method", info.FullMethod),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				resp, err = nil, status.Errorf(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// CatalogClient calls storefront.v1.Catalog.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

// NewCatalogClient wraps a client connection.
func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) GetProduct(ctx context.Context, id int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+CatalogServiceName+"/GetProduct", wrapperspb.Int64(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) BrowseCatalog(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+CatalogServiceName+"/BrowseCatalog", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) CheckAvailability(ctx context.Context, in *structpb.ListValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, "/"+CatalogServiceName+"/CheckAvailability", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
