package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/convoflow/convoflow/action"
	"github.com/convoflow/convoflow/channel"
	"github.com/convoflow/convoflow/commerce"
	"github.com/convoflow/convoflow/config"
	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultMaxSteps = 200
const defaultCaptureExpiry = 30 * time.Minute

// onInput is the fixed handle a capture node's outgoing edge carries.
const onInputHandle = "onInput"

// Engine is the flow interpreter. It walks one run's graph strictly
// sequentially, checkpointing the run after every node, and suspends
// when a node needs a human reply. Runs for distinct users execute
// concurrently; the engine holds no global lock.
type Engine struct {
	conf       config.EngineConfig
	runs       persistence.RunStore
	flows      *flow.Service
	tenants    persistence.TenantStore
	adapter    channel.Adapter
	commerce   commerce.Service
	httpClient *resty.Client
	locks      *userLocks
}

func New(conf config.EngineConfig, runs persistence.RunStore, flows *flow.Service, tenants persistence.TenantStore, adapter channel.Adapter, commerceService commerce.Service) *Engine {
	return &Engine{
		conf:       conf,
		runs:       runs,
		flows:      flows,
		tenants:    tenants,
		adapter:    adapter,
		commerce:   commerceService,
		httpClient: resty.New().SetTimeout(30 * time.Second),
		locks:      newUserLocks(),
	}
}

func (e *Engine) maxSteps() int {
	if e.conf.MaxSteps > 0 {
		return e.conf.MaxSteps
	}
	return defaultMaxSteps
}

func (e *Engine) captureExpiry() time.Duration {
	if e.conf.CaptureExpiryMinutes > 0 {
		return time.Duration(e.conf.CaptureExpiryMinutes) * time.Minute
	}
	return defaultCaptureExpiry
}

func (e *Engine) env(tenant *model.Tenant) *action.Env {
	return &action.Env{
		Tenant:        tenant,
		Adapter:       e.adapter,
		Commerce:      e.commerce,
		HttpClient:    e.httpClient,
		MaxWait:       time.Duration(e.conf.MaxWaitMs) * time.Millisecond,
		CaptureExpiry: e.captureExpiry(),
	}
}

// StartFlow creates a run and executes from the flow's start node. The
// run id is returned even when a node fails; the run record carries the
// failure.
func (e *Engine) StartFlow(ctx context.Context, tenantId string, flowId string, userPhone string) (string, error) {
	fl, err := e.flows.GetFlow(tenantId, flowId)
	if err != nil {
		logger.Error("flow not found or malformed", zap.String("flowId", flowId), zap.Error(err))
		return "", err
	}
	tenant, err := e.tenants.Get(tenantId)
	if err != nil {
		return "", err
	}
	run, err := e.runs.Create(flowId, tenantId, userPhone)
	if err != nil {
		return "", err
	}
	logger.Info("starting flow", zap.String("flowId", flowId), zap.String("runId", run.Id), zap.String("userPhone", userPhone))

	lock := e.locks.get(tenantId, userPhone)
	lock.Lock()
	defer lock.Unlock()
	return run.Id, e.execute(ctx, fl, tenant, run, fl.StartNodeId)
}

// Resume routes an external reply to the user's waiting run. A missing
// or expired waiting run, or a reply with no matching edge, is a
// logged no-op; replies are unstructured external input.
func (e *Engine) Resume(ctx context.Context, tenantId string, userPhone string, reply model.Reply) error {
	lock := e.locks.get(tenantId, userPhone)
	lock.Lock()
	defer lock.Unlock()

	run, err := e.runs.FindWaiting(tenantId, userPhone)
	if err != nil {
		return err
	}
	if run == nil {
		logger.Debug("no waiting run for reply", zap.String("userPhone", userPhone))
		return nil
	}
	fl, err := e.flows.GetFlow(run.TenantId, run.FlowId)
	if err != nil {
		logger.Error("waiting run references unavailable flow", zap.String("runId", run.Id), zap.String("flowId", run.FlowId), zap.Error(err))
		return nil
	}
	tenant, err := e.tenants.Get(run.TenantId)
	if err != nil {
		return err
	}

	var handle string
	switch run.WaitingFor {
	case model.WAIT_BUTTON_REPLY:
		handle = reply.Value()
	case model.WAIT_TEXT_REPLY:
		handle = onInputHandle
	default:
		logger.Error("waiting run has no wait kind", zap.String("runId", run.Id))
		return nil
	}
	next, ok := fl.Next(run.WaitingNodeId, handle)
	if !ok {
		logger.Info("no next node matched for reply", zap.String("runId", run.Id), zap.String("handle", handle))
		return nil
	}
	if run.WaitingFor == model.WAIT_TEXT_REPLY {
		if act, found := fl.Action(run.WaitingNodeId); found {
			if rec, isRec := act.(replyRecorder); isRec {
				rec.RecordReply(run, reply.Text)
			}
		}
	}
	run.ClearWait()
	run.UpdatedAt = time.Now()
	if err := e.runs.Save(run); err != nil {
		return err
	}
	logger.Info("resuming run", zap.String("runId", run.Id), zap.String("nodeId", next))
	return e.execute(ctx, fl, tenant, run, next)
}

// replyRecorder is implemented by actions that fold the user's text
// reply into the run context before execution continues.
type replyRecorder interface {
	RecordReply(run *model.Run, text string)
}

// execute is the step loop. Strictly sequential for one run; the run
// record is written back before and after every node execution so a
// crash loses at most one node's side effects.
func (e *Engine) execute(ctx context.Context, fl *flow.Flow, tenant *model.Tenant, run *model.Run, startNodeId string) error {
	env := e.env(tenant)
	steps := 0
	current := startNodeId
	for current != "" {
		steps++
		if steps > e.maxSteps() {
			logger.Error("step ceiling exceeded, suspected cycle", zap.String("runId", run.Id), zap.Int("maxSteps", e.maxSteps()))
			run.Status = model.RUN_ERROR
			run.UpdatedAt = time.Now()
			return e.runs.Save(run)
		}
		run.CurrentNodeId = current
		run.UpdatedAt = time.Now()
		if err := e.runs.Save(run); err != nil {
			return err
		}
		act, ok := fl.Action(current)
		if !ok {
			return e.fail(run, fmt.Errorf("node %s not in flow %s", current, fl.Id))
		}
		res, err := act.Execute(ctx, env, run)
		if err != nil {
			logger.Error("node execution failed", zap.String("runId", run.Id), zap.String("nodeId", current), zap.Error(err))
			return e.fail(run, err)
		}
		if res.Suspend {
			run.Status = model.RUN_WAITING
			run.WaitingNodeId = current
			run.WaitingFor = res.WaitFor
			if res.Expiry > 0 {
				expiresAt := time.Now().Add(res.Expiry)
				run.ExpiresAt = &expiresAt
			}
			run.UpdatedAt = time.Now()
			logger.Info("run waiting for reply", zap.String("runId", run.Id), zap.String("nodeId", current), zap.String("waitingFor", string(res.WaitFor)))
			return e.runs.Save(run)
		}
		run.UpdatedAt = time.Now()
		if err := e.runs.Save(run); err != nil {
			return err
		}
		if res.Terminal {
			break
		}
		next, ok := fl.Next(current, res.Handle)
		if !ok {
			break
		}
		current = next
	}
	run.Status = model.RUN_FINISHED
	run.UpdatedAt = time.Now()
	logger.Info("run finished", zap.String("runId", run.Id))
	return e.runs.Save(run)
}

func (e *Engine) fail(run *model.Run, cause error) error {
	run.Status = model.RUN_FAILED
	run.UpdatedAt = time.Now()
	if err := e.runs.Save(run); err != nil {
		return err
	}
	return cause
}
