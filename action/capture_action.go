package action

import (
	"context"

	"github.com/convoflow/convoflow/expr"
	"github.com/convoflow/convoflow/model"
)

var _ Action = new(captureAction)

// captureAction waits for free text from the user. The reply window is
// bounded; the expiry reaper fails runs nobody answered.
type captureAction struct {
	baseAction
	prompt   string
	variable string
}

func newCaptureAction(base baseAction, data map[string]any) (*captureAction, error) {
	var payload struct {
		Prompt   string `mapstructure:"prompt"`
		Variable string `mapstructure:"variable"`
	}
	if err := decodeData(base.id, data, &payload); err != nil {
		return nil, err
	}
	return &captureAction{
		baseAction: base,
		prompt:     payload.Prompt,
		variable:   payload.Variable,
	}, nil
}

func (a *captureAction) Execute(ctx context.Context, env *Env, run *model.Run) (Result, error) {
	if a.prompt != "" {
		body := expr.Resolve(a.prompt, run.Context)
		if _, err := env.Adapter.SendText(ctx, env.Tenant, run.UserPhone, body); err != nil {
			return Result{}, err
		}
	}
	return Result{
		Suspend: true,
		WaitFor: model.WAIT_TEXT_REPLY,
		Expiry:  env.CaptureExpiry,
	}, nil
}

// RecordReply stores the captured text into the run context before the
// interpreter continues past this node.
func (a *captureAction) RecordReply(run *model.Run, text string) {
	run.Context["lastUserMessage"] = text
	if a.variable != "" {
		run.Context[a.variable] = text
	}
}
