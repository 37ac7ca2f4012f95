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

const FLOW_KEY string = "FLOW"

var _ persistence.FlowStore = new(redisFlowDao)

type redisFlowDao struct {
	baseDao
	encoderDecoder util.EncoderDecoder[model.Flow]
}

func NewRedisFlowDao(baseDao baseDao, encoderDecoder util.EncoderDecoder[model.Flow]) *redisFlowDao {
	return &redisFlowDao{
		baseDao:        baseDao,
		encoderDecoder: encoderDecoder,
	}
}

func (rf *redisFlowDao) Save(flow *model.Flow) error {
	key := rf.getNamespaceKey(FLOW_KEY, flow.TenantId)
	ctx := context.Background()
	data, err := rf.encoderDecoder.Encode(*flow)
	if err != nil {
		return err
	}
	if err := rf.redisClient.HSet(ctx, key, []string{flow.Id, string(data)}).Err(); err != nil {
		logger.Error("error in saving flow", zap.String("flowId", flow.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rf *redisFlowDao) Get(tenantId string, flowId string) (*model.Flow, error) {
	key := rf.getNamespaceKey(FLOW_KEY, tenantId)
	ctx := context.Background()
	flowStr, err := rf.redisClient.HGet(ctx, key, flowId).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "flow", Id: flowId}
	}
	if err != nil {
		logger.Error("error in getting flow", zap.String("flowId", flowId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rf.encoderDecoder.Decode([]byte(flowStr))
}

func (rf *redisFlowDao) ListActive(tenantId string) ([]*model.Flow, error) {
	key := rf.getNamespaceKey(FLOW_KEY, tenantId)
	ctx := context.Background()
	all, err := rf.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		logger.Error("error in listing flows", zap.String("tenantId", tenantId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var flows []*model.Flow
	for _, flowStr := range all {
		flow, err := rf.encoderDecoder.Decode([]byte(flowStr))
		if err != nil {
			return nil, err
		}
		if flow.Active {
			flows = append(flows, flow)
		}
	}
	return flows, nil
}

func (rf *redisFlowDao) Delete(tenantId string, flowId string) error {
	key := rf.getNamespaceKey(FLOW_KEY, tenantId)
	ctx := context.Background()
	if err := rf.redisClient.HDel(ctx, key, flowId).Err(); err != nil {
		logger.Error("error in deleting flow", zap.String("flowId", flowId), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
