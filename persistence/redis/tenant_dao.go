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

const TENANT_KEY string = "TENANT"
const TENANT_PHONE_KEY string = "TENANT_PHONE"

var _ persistence.TenantStore = new(redisTenantDao)

type redisTenantDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Tenant]
}

func NewRedisTenantDao(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.Tenant]) *redisTenantDao {
	return &redisTenantDao{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rt *redisTenantDao) Save(tenant *model.Tenant) error {
	ctx := context.Background()
	data, err := rt.encoderDecoder.Encode(*tenant)
	if err != nil {
		return err
	}
	pipe := rt.redisClient.Pipeline()
	pipe.HSet(ctx, rt.getNamespaceKey(TENANT_KEY), []string{tenant.Id, string(data)})
	// secondary index used when routing inbound webhooks
	pipe.HSet(ctx, rt.getNamespaceKey(TENANT_PHONE_KEY), []string{tenant.PhoneNumberId, tenant.Id})
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("error in saving tenant", zap.String("tenantId", tenant.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rt *redisTenantDao) Get(id string) (*model.Tenant, error) {
	ctx := context.Background()
	tenantStr, err := rt.redisClient.HGet(ctx, rt.getNamespaceKey(TENANT_KEY), id).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "tenant", Id: id}
	}
	if err != nil {
		logger.Error("error in getting tenant", zap.String("tenantId", id), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rt.encoderDecoder.Decode([]byte(tenantStr))
}

func (rt *redisTenantDao) GetByPhoneNumberId(phoneNumberId string) (*model.Tenant, error) {
	ctx := context.Background()
	tenantId, err := rt.redisClient.HGet(ctx, rt.getNamespaceKey(TENANT_PHONE_KEY), phoneNumberId).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "tenant", Id: phoneNumberId}
	}
	if err != nil {
		logger.Error("error in resolving tenant by phone number id", zap.String("phoneNumberId", phoneNumberId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rt.Get(tenantId)
}

func (rt *redisTenantDao) List() ([]*model.Tenant, error) {
	ctx := context.Background()
	all, err := rt.redisClient.HGetAll(ctx, rt.getNamespaceKey(TENANT_KEY)).Result()
	if err != nil {
		logger.Error("error in listing tenants", zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var tenants []*model.Tenant
	for _, tenantStr := range all {
		tenant, err := rt.encoderDecoder.Decode([]byte(tenantStr))
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}
