package action

import (
	"context"
	"fmt"
	"time"

	"github.com/convoflow/convoflow/model"
)

const defaultWaitMs = 2000

var _ Action = new(waitAction)

// waitAction is a genuine in-step delay. It blocks only this run's
// step loop and never persists the run as waiting; no external trigger
// is needed to continue.
type waitAction struct {
	baseAction
	delay time.Duration
}

func newWaitAction(base baseAction, data map[string]any) (*waitAction, error) {
	var payload struct {
		Ms int `mapstructure:"ms"`
	}
	if err := decodeData(base.id, data, &payload); err != nil {
		return nil, err
	}
	if payload.Ms == 0 {
		payload.Ms = defaultWaitMs
	}
	return &waitAction{
		baseAction: base,
		delay:      time.Duration(payload.Ms) * time.Millisecond,
	}, nil
}

func (a *waitAction) Validate() error {
	if a.delay < 0 {
		return fmt.Errorf("nodeId=%s, wait duration %d wrong", a.id, a.delay)
	}
	return nil
}

func (a *waitAction) Execute(ctx context.Context, env *Env, run *model.Run) (Result, error) {
	delay := a.delay
	if env.MaxWait > 0 && delay > env.MaxWait {
		delay = env.MaxWait
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	return Result{}, nil
}
