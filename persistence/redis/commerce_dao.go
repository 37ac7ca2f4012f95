package redis

import (
	"context"

	rd "github.com/go-redis/redis/v9"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
	"go.uber.org/zap"
)

const CART_KEY string = "CART"
const ORDER_KEY string = "ORDER"
const PRODUCT_KEY string = "PRODUCT"

var _ persistence.CartStore = new(redisCartDao)

type redisCartDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Cart]
}

func NewRedisCartDao(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.Cart]) *redisCartDao {
	return &redisCartDao{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rc *redisCartDao) Get(tenantId string, userPhone string) (*model.Cart, error) {
	key := rc.getNamespaceKey(CART_KEY, tenantId)
	ctx := context.Background()
	cartStr, err := rc.redisClient.HGet(ctx, key, userPhone).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "cart", Id: userPhone}
	}
	if err != nil {
		logger.Error("error in getting cart", zap.String("userPhone", userPhone), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rc.encoderDecoder.Decode([]byte(cartStr))
}

func (rc *redisCartDao) Save(cart *model.Cart) error {
	key := rc.getNamespaceKey(CART_KEY, cart.TenantId)
	ctx := context.Background()
	data, err := rc.encoderDecoder.Encode(*cart)
	if err != nil {
		return err
	}
	if err := rc.redisClient.HSet(ctx, key, []string{cart.UserPhone, string(data)}).Err(); err != nil {
		logger.Error("error in saving cart", zap.String("userPhone", cart.UserPhone), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rc *redisCartDao) Delete(tenantId string, userPhone string) error {
	key := rc.getNamespaceKey(CART_KEY, tenantId)
	ctx := context.Background()
	if err := rc.redisClient.HDel(ctx, key, userPhone).Err(); err != nil {
		logger.Error("error in deleting cart", zap.String("userPhone", userPhone), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

var _ persistence.OrderStore = new(redisOrderDao)

type redisOrderDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Order]
}

func NewRedisOrderDao(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.Order]) *redisOrderDao {
	return &redisOrderDao{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (ro *redisOrderDao) Save(order *model.Order) error {
	key := ro.getNamespaceKey(ORDER_KEY, order.TenantId)
	ctx := context.Background()
	data, err := ro.encoderDecoder.Encode(*order)
	if err != nil {
		return err
	}
	if err := ro.redisClient.HSet(ctx, key, []string{order.Id, string(data)}).Err(); err != nil {
		logger.Error("error in saving order", zap.String("orderId", order.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (ro *redisOrderDao) Get(tenantId string, orderId string) (*model.Order, error) {
	key := ro.getNamespaceKey(ORDER_KEY, tenantId)
	ctx := context.Background()
	orderStr, err := ro.redisClient.HGet(ctx, key, orderId).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "order", Id: orderId}
	}
	if err != nil {
		logger.Error("error in getting order", zap.String("orderId", orderId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return ro.encoderDecoder.Decode([]byte(orderStr))
}

var _ persistence.ProductStore = new(redisProductDao)

type redisProductDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Product]
}

func NewRedisProductDao(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.Product]) *redisProductDao {
	return &redisProductDao{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rp *redisProductDao) Save(product *model.Product) error {
	key := rp.getNamespaceKey(PRODUCT_KEY, product.TenantId)
	ctx := context.Background()
	data, err := rp.encoderDecoder.Encode(*product)
	if err != nil {
		return err
	}
	if err := rp.redisClient.HSet(ctx, key, []string{product.Id, string(data)}).Err(); err != nil {
		logger.Error("error in saving product", zap.String("productId", product.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rp *redisProductDao) Get(tenantId string, productId string) (*model.Product, error) {
	key := rp.getNamespaceKey(PRODUCT_KEY, tenantId)
	ctx := context.Background()
	productStr, err := rp.redisClient.HGet(ctx, key, productId).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "product", Id: productId}
	}
	if err != nil {
		logger.Error("error in getting product", zap.String("productId", productId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rp.encoderDecoder.Decode([]byte(productStr))
}
