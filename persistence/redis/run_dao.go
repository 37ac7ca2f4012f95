package redis

import (
	"context"
	"strconv"
	"strings"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RUN_KEY string = "RUN"
const WAITING_KEY string = "WAITING"
const EXPIRY_KEY string = "EXPIRY"

var _ persistence.RunStore = new(redisRunDao)

// redisRunDao keeps run records in a per-tenant hash, waiting runs in a
// per-user sorted set scored by update time (so FindWaiting picks the
// most recently updated one), and reply deadlines in a global sorted
// set scored by expiry time.
type redisRunDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Run]
}

func NewRedisRunDao(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.Run]) *redisRunDao {
	return &redisRunDao{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rdao *redisRunDao) Create(flowId string, tenantId string, userPhone string) (*model.Run, error) {
	now := time.Now()
	run := &model.Run{
		Id:        uuid.New().String(),
		FlowId:    flowId,
		TenantId:  tenantId,
		UserPhone: userPhone,
		Status:    model.RUN_RUNNING,
		Context:   map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := rdao.Save(run); err != nil {
		return nil, err
	}
	return run, nil
}

func (rdao *redisRunDao) Save(run *model.Run) error {
	ctx := context.Background()
	data, err := rdao.encoderDecoder.Encode(*run)
	if err != nil {
		return err
	}
	runKey := rdao.getNamespaceKey(RUN_KEY, run.TenantId)
	waitingKey := rdao.getNamespaceKey(WAITING_KEY, run.TenantId, run.UserPhone)
	expiryKey := rdao.getNamespaceKey(EXPIRY_KEY)
	expiryMember := run.TenantId + "|" + run.Id

	pipe := rdao.redisClient.Pipeline()
	pipe.HSet(ctx, runKey, []string{run.Id, string(data)})
	if run.Status == model.RUN_WAITING {
		pipe.ZAdd(ctx, waitingKey, rd.Z{
			Score:  float64(run.UpdatedAt.UnixMilli()),
			Member: run.Id,
		})
	} else {
		pipe.ZRem(ctx, waitingKey, run.Id)
	}
	if run.Status == model.RUN_WAITING && run.ExpiresAt != nil {
		pipe.ZAdd(ctx, expiryKey, rd.Z{
			Score:  float64(run.ExpiresAt.UnixMilli()),
			Member: expiryMember,
		})
	} else {
		pipe.ZRem(ctx, expiryKey, expiryMember)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("error in saving run", zap.String("runId", run.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rdao *redisRunDao) Get(tenantId string, runId string) (*model.Run, error) {
	ctx := context.Background()
	runKey := rdao.getNamespaceKey(RUN_KEY, tenantId)
	runStr, err := rdao.redisClient.HGet(ctx, runKey, runId).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "run", Id: runId}
	}
	if err != nil {
		logger.Error("error in getting run", zap.String("runId", runId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rdao.encoderDecoder.Decode([]byte(runStr))
}

func (rdao *redisRunDao) FindWaiting(tenantId string, userPhone string) (*model.Run, error) {
	ctx := context.Background()
	waitingKey := rdao.getNamespaceKey(WAITING_KEY, tenantId, userPhone)
	runIds, err := rdao.redisClient.ZRevRange(ctx, waitingKey, 0, -1).Result()
	if err != nil {
		logger.Error("error in reading waiting index", zap.String("userPhone", userPhone), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	now := time.Now()
	for _, runId := range runIds {
		run, err := rdao.Get(tenantId, runId)
		if err != nil {
			if _, ok := err.(persistence.NotFoundError); ok {
				rdao.redisClient.ZRem(ctx, waitingKey, runId)
				continue
			}
			return nil, err
		}
		// stale index entries are repaired on the way through
		if run.Status != model.RUN_WAITING {
			rdao.redisClient.ZRem(ctx, waitingKey, runId)
			continue
		}
		if run.Expired(now) {
			continue
		}
		return run, nil
	}
	return nil, nil
}

func (rdao *redisRunDao) PopExpired(now time.Time) ([]*model.Run, error) {
	ctx := context.Background()
	expiryKey := rdao.getNamespaceKey(EXPIRY_KEY)
	opt := &rd.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}
	members, err := rdao.redisClient.ZRangeByScore(ctx, expiryKey, opt).Result()
	if err != nil {
		logger.Error("error in reading expiry index", zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var expired []*model.Run
	for _, member := range members {
		parts := strings.SplitN(member, "|", 2)
		if len(parts) != 2 {
			rdao.redisClient.ZRem(ctx, expiryKey, member)
			continue
		}
		rdao.redisClient.ZRem(ctx, expiryKey, member)
		run, err := rdao.Get(parts[0], parts[1])
		if err != nil {
			continue
		}
		if run.Status == model.RUN_WAITING {
			expired = append(expired, run)
		}
	}
	return expired, nil
}
