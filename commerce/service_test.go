package commerce

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	rd "github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/convoflow/channel"
	"github.com/convoflow/convoflow/config"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/persistence/redis"
)

type fakeAdapter struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeAdapter) SendText(ctx context.Context, tenant *model.Tenant, to string, body string) (*channel.DeliveryReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, body)
	return &channel.DeliveryReceipt{ProviderMessageId: "wamid-test"}, nil
}

func (f *fakeAdapter) SendInteractive(ctx context.Context, tenant *model.Tenant, to string, prompt channel.Interactive) (*channel.DeliveryReceipt, error) {
	return &channel.DeliveryReceipt{ProviderMessageId: "wamid-test"}, nil
}

func newTestService(t *testing.T) (*cartService, *redis.Storage, *fakeAdapter) {
	mr := miniredis.RunT(t)
	client := rd.NewUniversalClient(&rd.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { client.Close() })
	storage := redis.NewStorageWithClient(client, "test")
	adapter := &fakeAdapter{}
	conf := config.CommerceConfig{FrontendURL: "https://shop.example.com", Currency: "INR"}
	svc := NewService(conf, storage.Products, storage.Carts, storage.Orders, adapter)
	return svc, storage, adapter
}

var tenant = &model.Tenant{Id: "t1", Name: "acme", PhoneNumberId: "10203040"}

const userPhone = "919900001111"

func TestAddToCart(t *testing.T) {
	svc, storage, _ := newTestService(t)
	require.NoError(t, storage.Products.Save(&model.Product{Id: "p1", TenantId: "t1", Name: "shoes", Price: 50}))
	require.NoError(t, storage.Products.Save(&model.Product{Id: "p2", TenantId: "t1", Name: "socks", Price: 10}))

	ctx := context.Background()
	require.NoError(t, svc.AddToCart(ctx, tenant, userPhone, "p1", 2))
	require.NoError(t, svc.AddToCart(ctx, tenant, userPhone, "p2", 0)) // qty defaults to 1
	require.NoError(t, svc.AddToCart(ctx, tenant, userPhone, "p1", 1)) // same line increments

	cart, err := storage.Carts.Get("t1", userPhone)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	require.Equal(t, 3, cart.Items[0].Qty)
	require.Equal(t, 160.0, cart.Total)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.AddToCart(context.Background(), tenant, userPhone, "ghost", 1)
	require.Error(t, err)
	_, ok := err.(persistence.NotFoundError)
	require.True(t, ok)
}

func TestCreateOrderAndNotify(t *testing.T) {
	svc, storage, adapter := newTestService(t)
	require.NoError(t, storage.Products.Save(&model.Product{Id: "p1", TenantId: "t1", Name: "shoes", Price: 50}))

	ctx := context.Background()
	require.NoError(t, svc.AddToCart(ctx, tenant, userPhone, "p1", 2))

	order, err := svc.CreateOrderAndNotify(ctx, tenant, userPhone, nil)
	require.NoError(t, err)
	require.NotNil(t, order)
	require.Equal(t, model.ORDER_PENDING, order.Status)
	require.Equal(t, 100.0, order.Total)
	require.Equal(t, "INR", order.Currency)
	require.Equal(t, "https://shop.example.com/pay?orderId="+order.Id, order.PaymentLink)

	saved, err := storage.Orders.Get("t1", order.Id)
	require.NoError(t, err)
	require.Equal(t, order.Id, saved.Id)

	require.Len(t, adapter.texts, 1)
	require.True(t, strings.Contains(adapter.texts[0], order.PaymentLink))

	// the cart is consumed by the order
	_, err = storage.Carts.Get("t1", userPhone)
	require.Error(t, err)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc, _, adapter := newTestService(t)

	order, err := svc.CreateOrderAndNotify(context.Background(), tenant, userPhone, nil)
	require.NoError(t, err)
	require.Nil(t, order)
	require.Equal(t, []string{"Your cart is empty."}, adapter.texts)
}
