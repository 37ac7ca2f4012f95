package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/convoflow/convoflow/engine"
	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
	c "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// scheduleWindow is how far past the scheduled minute a tick still
// counts as due. Ticks run once a minute; the dedupe cache keeps a
// flow from firing twice inside one window.
const scheduleWindow = 90 * time.Second

// Scheduler is a trigger source: it starts scheduled flows for every
// contact of the owning tenant when the flow's daily/weekly time
// window comes around.
type Scheduler struct {
	eng      *engine.Engine
	flows    *flow.Service
	tenants  persistence.TenantStore
	contacts persistence.ContactStore
	tick     *util.TickWorker
	fired    *c.Cache
}

func NewScheduler(eng *engine.Engine, flows *flow.Service, tenants persistence.TenantStore, contacts persistence.ContactStore, intervalSec int, wg *sync.WaitGroup) *Scheduler {
	if intervalSec <= 0 {
		intervalSec = 60
	}
	s := &Scheduler{
		eng:      eng,
		flows:    flows,
		tenants:  tenants,
		contacts: contacts,
		fired:    c.New(25*time.Hour, time.Hour),
	}
	s.tick = util.NewTickWorker("flow-scheduler", intervalSec, s.check, wg)
	return s
}

func (s *Scheduler) Start() {
	s.tick.Start()
}

func (s *Scheduler) Stop() {
	s.tick.Stop()
}

func (s *Scheduler) check() {
	tenants, err := s.tenants.List()
	if err != nil {
		logger.Error("scheduler: error listing tenants", zap.Error(err))
		return
	}
	now := time.Now()
	for _, tenant := range tenants {
		flows, err := s.flows.ListActive(tenant.Id)
		if err != nil {
			logger.Error("scheduler: error listing flows", zap.String("tenantId", tenant.Id), zap.Error(err))
			continue
		}
		for _, def := range flows {
			if def.Schedule == nil {
				continue
			}
			localNow, ok := due(def.Schedule, now)
			if !ok {
				continue
			}
			dedupeKey := fmt.Sprintf("%s:%s", def.Id, localNow.Format("2006-01-02"))
			if err := s.fired.Add(dedupeKey, true, c.DefaultExpiration); err != nil {
				continue // already fired today
			}
			s.trigger(tenant, def)
		}
	}
}

func (s *Scheduler) trigger(tenant *model.Tenant, def *model.Flow) {
	contacts, err := s.contacts.ListByTenant(tenant.Id)
	if err != nil {
		logger.Error("scheduler: error listing contacts", zap.String("tenantId", tenant.Id), zap.Error(err))
		return
	}
	logger.Info("scheduled flow due", zap.String("flowId", def.Id), zap.Int("contacts", len(contacts)))
	for _, contact := range contacts {
		if _, err := s.eng.StartFlow(context.Background(), tenant.Id, def.Id, contact.Phone); err != nil {
			logger.Error("scheduler: error starting flow", zap.String("flowId", def.Id), zap.String("userPhone", contact.Phone), zap.Error(err))
		}
	}
}

// due reports whether the schedule fires in the current window and
// returns the schedule-local time for dedupe keying.
func due(sched *model.Schedule, now time.Time) (time.Time, bool) {
	loc := time.UTC
	if sched.Timezone != "" {
		if l, err := time.LoadLocation(sched.Timezone); err == nil {
			loc = l
		}
	}
	localNow := now.In(loc)
	var hh, mm int
	if _, err := fmt.Sscanf(sched.Time, "%d:%d", &hh, &mm); err != nil {
		return localNow, false
	}
	scheduled := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), hh, mm, 0, 0, loc)
	if localNow.Before(scheduled) || localNow.Sub(scheduled) > scheduleWindow {
		return localNow, false
	}
	switch sched.Type {
	case model.SCHEDULE_TYPE_DAILY:
		return localNow, true
	case model.SCHEDULE_TYPE_WEEKLY:
		day := strings.ToLower(localNow.Format("Mon"))
		for _, d := range sched.Days {
			if strings.ToLower(d) == day {
				return localNow, true
			}
		}
		return localNow, false
	default:
		return localNow, false
	}
}
