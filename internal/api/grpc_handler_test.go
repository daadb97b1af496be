package api

import (
	"context"
	"errors"
	"math"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"storefront-service/internal/domain"
	"storefront-service/internal/logging"
	"storefront-service/internal/store"
)

func setupTestGrpcClient(t *testing.T) (*CatalogClient, *MockProductStorer) {
	t.Helper()
	products := new(MockProductStorer)

	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
		UnaryRecoveryInterceptor(logging.Discard()),
		UnaryLoggingInterceptor(logging.Discard()),
	))
	RegisterCatalogServer(server, NewGRPCHandler(products, 2, logging.Discard()))
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewCatalogClient(conn), products
}

func TestGRPCGetProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		client, products := setupTestGrpcClient(t)
		p := testProduct(3, "Running Shoes", "89.50", domain.CategorySports, 12)
		products.On("GetProductByID", mock.Anything, int64(3)).Return(&p, nil).Once()

		got, err := client.GetProduct(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Running Shoes", got.GetFields()["name"].GetStringValue())
		assert.Equal(t, "89.5", got.GetFields()["price"].GetStringValue())
		assert.Equal(t, float64(12), got.GetFields()["stock"].GetNumberValue())
		products.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		client, products := setupTestGrpcClient(t)
		products.On("GetProductByID", mock.Anything, int64(8)).Return(nil, store.ErrProductNotFound).Once()

		_, err := client.GetProduct(ctx, 8)
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("Internal", func(t *testing.T) {
		client, products := setupTestGrpcClient(t)
		products.On("GetProductByID", mock.Anything, int64(8)).Return(nil, errors.New("pool exhausted")).Once()

		_, err := client.GetProduct(ctx, 8)
		assert.Equal(t, codes.Internal, status.Code(err))
	})

	t.Run("Invalid Argument", func(t *testing.T) {
		client, products := setupTestGrpcClient(t)
		_, err := client.GetProduct(ctx, 0)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		products.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})
}

func TestGRPCBrowseCatalog(t *testing.T) {
	client, products := setupTestGrpcClient(t)
	products.On("ListProducts", mock.Anything, store.ListProductsParams{}).Return([]domain.Product{
		testProduct(1, "Linen Shirt", "30.00", domain.CategoryFashion, 40),
		testProduct(2, "Wool Coat", "120.00", domain.CategoryFashion, 40),
		testProduct(3, "Denim Jacket", "75.00", domain.CategoryFashion, 40),
		testProduct(4, "Blender", "60.00", domain.CategoryHomeLiving, 40),
	}, nil).Once()

	req, err := structpb.NewStruct(map[string]any{"category": "Fashion", "sort": "price-high", "page": 2})
	require.NoError(t, err)

	got, err := client.BrowseCatalog(context.Background(), req)
	require.NoError(t, err)

	fields := got.GetFields()
	assert.Equal(t, float64(3), fields["total"].GetNumberValue())
	assert.Equal(t, float64(2), fields["total_pages"].GetNumberValue())
	items := fields["items"].GetListValue().GetValues()
	require.Len(t, items, 1)
	assert.Equal(t, "Linen Shirt", items[0].GetStructValue().GetFields()["name"].GetStringValue())
}

func TestGRPCBrowseCatalog_PageBounds(t *testing.T) {
	ctx := context.Background()

	t.Run("Huge page is rejected", func(t *testing.T) {
		client, products := setupTestGrpcClient(t)
		for _, page := range []float64{4611686018427388928, math.Inf(1), math.NaN()} {
			req := &structpb.Struct{Fields: map[string]*structpb.Value{"page": structpb.NewNumberValue(page)}}
			_, err := client.BrowseCatalog(ctx, req)
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err), "page %v", page)
		}
		products.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
	})

	t.Run("Page past the end is empty", func(t *testing.T) {
		client, products := setupTestGrpcClient(t)
		products.On("ListProducts", mock.Anything, store.ListProductsParams{}).Return([]domain.Product{
			testProduct(1, "Linen Shirt", "30.00", domain.CategoryFashion, 40),
		}, nil).Once()

		req := &structpb.Struct{Fields: map[string]*structpb.Value{"page": structpb.NewNumberValue(math.MaxInt32)}}
		got, err := client.BrowseCatalog(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, float64(1), got.GetFields()["total"].GetNumberValue())
		assert.Empty(t, got.GetFields()["items"].GetListValue().GetValues())
	})
}

func TestGRPCRecovery(t *testing.T) {
	client, products := setupTestGrpcClient(t)
	products.On("GetProductByID", mock.Anything, int64(5)).
		Run(func(mock.Arguments) { panic("store exploded") }).
		Return(nil, nil).Once()

	_, err := client.GetProduct(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))

	// The server is still serving after the panic.
	p := testProduct(6, "Yoga Mat", "25.00", domain.CategorySports, 3)
	products.On("GetProductByID", mock.Anything, int64(6)).Return(&p, nil).Once()
	got, err := client.GetProduct(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, "Yoga Mat", got.GetFields()["name"].GetStringValue())
}

func TestUnaryRecoveryInterceptor(t *testing.T) {
	interceptor := UnaryRecoveryInterceptor(logging.Discard())
	info := &grpc.UnaryServerInfo{FullMethod: "/" + CatalogServiceName + "/BrowseCatalog"}

	resp, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		var items []int
		return items[3], nil
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))

	resp, err = interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func availabilityItem(id, qty float64) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"product_id": structpb.NewNumberValue(id),
		"quantity":   structpb.NewNumberValue(qty),
	}})
}

func TestGRPCCheckAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("Mixed results", func(t *testing.T) {
		client, products := setupTestGrpcClient(t)
		products.On("ListProducts", mock.Anything, store.ListProductsParams{}).Return([]domain.Product{
			testProduct(1, "Headphones", "49.99", domain.CategoryElectronics, 10),
			testProduct(2, "Charger", "19.99", domain.CategoryElectronics, 1),
		}, nil).Once()

		got, err := client.CheckAvailability(ctx, &structpb.ListValue{Values: []*structpb.Value{
			availabilityItem(1, 3),
			availabilityItem(2, 2),
			availabilityItem(9, 1),
		}})
		require.NoError(t, err)

		results := got.GetValues()
		require.Len(t, results, 3)

		ok := results[0].GetStructValue().GetFields()
		assert.True(t, ok["available"].GetBoolValue())
		assert.Equal(t, float64(10), ok["available_quantity"].GetNumberValue())
		assert.True(t, decimal.RequireFromString("49.99").Equal(decimal.RequireFromString(ok["price"].GetStringValue())))

		short := results[1].GetStructValue().GetFields()
		assert.False(t, short["available"].GetBoolValue())
		assert.Equal(t, "Insufficient stock.", short["reason"].GetStringValue())

		missing := results[2].GetStructValue().GetFields()
		assert.False(t, missing["available"].GetBoolValue())
		assert.Equal(t, "Product not found.", missing["reason"].GetStringValue())
	})

	t.Run("Invalid input", func(t *testing.T) {
		client, products := setupTestGrpcClient(t)

		_, err := client.CheckAvailability(ctx, &structpb.ListValue{})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = client.CheckAvailability(ctx, &structpb.ListValue{Values: []*structpb.Value{availabilityItem(1, 0)}})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = client.CheckAvailability(ctx, &structpb.ListValue{Values: []*structpb.Value{availabilityItem(-1, 2)}})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		products.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
	})
}
