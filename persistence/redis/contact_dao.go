package redis

import (
	"context"

	rd "github.com/go-redis/redis/v9"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CONTACT_KEY string = "CONTACT"

var _ persistence.ContactStore = new(redisContactDao)

type redisContactDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Contact]
}

func NewRedisContactDao(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.Contact]) *redisContactDao {
	return &redisContactDao{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rc *redisContactDao) Save(contact *model.Contact) error {
	if contact.Id == "" {
		contact.Id = uuid.New().String()
	}
	key := rc.getNamespaceKey(CONTACT_KEY, contact.TenantId)
	ctx := context.Background()
	data, err := rc.encoderDecoder.Encode(*contact)
	if err != nil {
		return err
	}
	if err := rc.redisClient.HSet(ctx, key, []string{contact.Phone, string(data)}).Err(); err != nil {
		logger.Error("error in saving contact", zap.String("phone", contact.Phone), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rc *redisContactDao) FindByPhone(tenantId string, phone string) (*model.Contact, error) {
	key := rc.getNamespaceKey(CONTACT_KEY, tenantId)
	ctx := context.Background()
	contactStr, err := rc.redisClient.HGet(ctx, key, phone).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "contact", Id: phone}
	}
	if err != nil {
		logger.Error("error in getting contact", zap.String("phone", phone), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rc.encoderDecoder.Decode([]byte(contactStr))
}

func (rc *redisContactDao) ListByTenant(tenantId string) ([]*model.Contact, error) {
	key := rc.getNamespaceKey(CONTACT_KEY, tenantId)
	ctx := context.Background()
	all, err := rc.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		logger.Error("error in listing contacts", zap.String("tenantId", tenantId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var contacts []*model.Contact
	for _, contactStr := range all {
		contact, err := rc.encoderDecoder.Decode([]byte(contactStr))
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}
