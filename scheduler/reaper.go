package scheduler

import (
	"sync"
	"time"

	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
	"go.uber.org/zap"
)

// Reaper fails waiting runs whose reply window closed. Without it a
// run abandoned mid-capture would sit in waiting forever.
type Reaper struct {
	runs persistence.RunStore
	tick *util.TickWorker
}

func NewReaper(runs persistence.RunStore, intervalSec int, wg *sync.WaitGroup) *Reaper {
	if intervalSec <= 0 {
		intervalSec = 60
	}
	r := &Reaper{runs: runs}
	r.tick = util.NewTickWorker("run-reaper", intervalSec, r.reap, wg)
	return r
}

func (r *Reaper) Start() {
	r.tick.Start()
}

func (r *Reaper) Stop() {
	r.tick.Stop()
}

func (r *Reaper) reap() {
	expired, err := r.runs.PopExpired(time.Now())
	if err != nil {
		logger.Error("error reaping expired runs", zap.Error(err))
		return
	}
	for _, run := range expired {
		run.Status = model.RUN_FAILED
		run.UpdatedAt = time.Now()
		if err := r.runs.Save(run); err != nil {
			logger.Error("error failing expired run", zap.String("runId", run.Id), zap.Error(err))
			continue
		}
		logger.Info("expired waiting run failed", zap.String("runId", run.Id), zap.String("userPhone", run.UserPhone))
	}
}
