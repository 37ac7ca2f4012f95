package redis

import (
	"context"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MESSAGE_KEY string = "MSG"

var _ persistence.MessageLog = new(redisMessageDao)

// redisMessageDao appends conversation history to a per-tenant sorted
// set scored by send time.
type redisMessageDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Message]
}

func NewRedisMessageDao(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.Message]) *redisMessageDao {
	return &redisMessageDao{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rm *redisMessageDao) Append(msg *model.Message) error {
	if msg.Id == "" {
		msg.Id = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	key := rm.getNamespaceKey(MESSAGE_KEY, msg.TenantId)
	ctx := context.Background()
	data, err := rm.encoderDecoder.Encode(*msg)
	if err != nil {
		return err
	}
	member := rd.Z{
		Score:  float64(msg.CreatedAt.UnixMilli()),
		Member: string(data),
	}
	if err := rm.redisClient.ZAdd(ctx, key, member).Err(); err != nil {
		logger.Error("error in appending message", zap.String("to", msg.To), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
