package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/convoflow/convoflow/channel"
	"github.com/convoflow/convoflow/config"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the commerce collaborator the engine delegates to from
// add_to_cart and create_order nodes.
type Service interface {
	AddToCart(ctx context.Context, tenant *model.Tenant, userPhone string, productId string, qty int) error
	CreateOrderAndNotify(ctx context.Context, tenant *model.Tenant, userPhone string, nodeConfig map[string]any) (*model.Order, error)
}

var _ Service = new(cartService)

type cartService struct {
	conf     config.CommerceConfig
	products persistence.ProductStore
	carts    persistence.CartStore
	orders   persistence.OrderStore
	adapter  channel.Adapter
}

func NewService(conf config.CommerceConfig, products persistence.ProductStore, carts persistence.CartStore, orders persistence.OrderStore, adapter channel.Adapter) *cartService {
	return &cartService{
		conf:     conf,
		products: products,
		carts:    carts,
		orders:   orders,
		adapter:  adapter,
	}
}

func (cs *cartService) AddToCart(ctx context.Context, tenant *model.Tenant, userPhone string, productId string, qty int) error {
	if qty <= 0 {
		qty = 1
	}
	product, err := cs.products.Get(tenant.Id, productId)
	if err != nil {
		return err
	}
	cart, err := cs.carts.Get(tenant.Id, userPhone)
	if err != nil {
		if _, ok := err.(persistence.NotFoundError); !ok {
			return err
		}
		cart = &model.Cart{TenantId: tenant.Id, UserPhone: userPhone}
	}
	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductId == productId {
			cart.Items[i].Qty += qty
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, model.CartItem{
			ProductId: product.Id,
			Qty:       qty,
			Price:     product.Price,
		})
	}
	total := 0.0
	for _, item := range cart.Items {
		total += float64(item.Qty) * item.Price
	}
	cart.Total = total
	cart.UpdatedAt = time.Now()
	return cs.carts.Save(cart)
}

// CreateOrderAndNotify snapshots the user's cart into a pending order,
// sends the payment link and clears the cart. An empty cart is not an
// error; the user is told and no order is created.
func (cs *cartService) CreateOrderAndNotify(ctx context.Context, tenant *model.Tenant, userPhone string, nodeConfig map[string]any) (*model.Order, error) {
	cart, err := cs.carts.Get(tenant.Id, userPhone)
	if err != nil {
		if _, ok := err.(persistence.NotFoundError); !ok {
			return nil, err
		}
		cart = nil
	}
	if cart == nil || len(cart.Items) == 0 {
		if _, err := cs.adapter.SendText(ctx, tenant, userPhone, "Your cart is empty."); err != nil {
			return nil, err
		}
		return nil, nil
	}
	order := &model.Order{
		Id:        uuid.New().String(),
		TenantId:  tenant.Id,
		UserPhone: userPhone,
		Items:     cart.Items,
		Total:     cart.Total,
		Currency:  cs.conf.Currency,
		Status:    model.ORDER_PENDING,
		CreatedAt: time.Now(),
	}
	order.PaymentLink = fmt.Sprintf("%s/pay?orderId=%s", cs.conf.FrontendURL, order.Id)
	if err := cs.orders.Save(order); err != nil {
		return nil, err
	}
	body := fmt.Sprintf("Your order total is %s %.2f. Pay here: %s", order.Currency, order.Total, order.PaymentLink)
	if _, err := cs.adapter.SendText(ctx, tenant, userPhone, body); err != nil {
		return nil, err
	}
	if err := cs.carts.Delete(tenant.Id, userPhone); err != nil {
		logger.Error("error clearing cart after order", zap.String("userPhone", userPhone), zap.Error(err))
	}
	logger.Info("order created", zap.String("orderId", order.Id), zap.String("userPhone", userPhone))
	return order, nil
}
