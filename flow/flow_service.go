package flow

import (
	"fmt"
	"time"

	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	c "github.com/patrickmn/go-cache"
)

// Service serves executable flows, caching conversions so the hot
// resume path does not re-parse the graph on every inbound reply.
type Service struct {
	store persistence.FlowStore
	cache *c.Cache
}

func NewService(store persistence.FlowStore) *Service {
	return &Service{
		store: store,
		cache: c.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *Service) cacheKey(tenantId string, flowId string) string {
	return fmt.Sprintf("%s:%s", tenantId, flowId)
}

func (s *Service) GetFlow(tenantId string, flowId string) (*Flow, error) {
	key := s.cacheKey(tenantId, flowId)
	if cached, found := s.cache.Get(key); found {
		return cached.(*Flow), nil
	}
	def, err := s.store.Get(tenantId, flowId)
	if err != nil {
		return nil, err
	}
	fl, err := Convert(def)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, fl, c.DefaultExpiration)
	return fl, nil
}

func (s *Service) GetDefinition(tenantId string, flowId string) (*model.Flow, error) {
	return s.store.Get(tenantId, flowId)
}

func (s *Service) ListActive(tenantId string) ([]*model.Flow, error) {
	return s.store.ListActive(tenantId)
}

func (s *Service) Save(def *model.Flow) error {
	if err := Validate(def); err != nil {
		return err
	}
	if err := s.store.Save(def); err != nil {
		return err
	}
	s.cache.Delete(s.cacheKey(def.TenantId, def.Id))
	return nil
}

func (s *Service) Delete(tenantId string, flowId string) error {
	if err := s.store.Delete(tenantId, flowId); err != nil {
		return err
	}
	s.cache.Delete(s.cacheKey(tenantId, flowId))
	return nil
}
