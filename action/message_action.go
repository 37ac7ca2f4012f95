package action

import (
	"context"

	"github.com/convoflow/convoflow/expr"
	"github.com/convoflow/convoflow/model"
)

var _ Action = new(messageAction)

type messageAction struct {
	baseAction
	label string
}

func newMessageAction(base baseAction, data map[string]any) (*messageAction, error) {
	var payload struct {
		Label string `mapstructure:"label"`
	}
	if err := decodeData(base.id, data, &payload); err != nil {
		return nil, err
	}
	return &messageAction{baseAction: base, label: payload.Label}, nil
}

// A send failure here aborts the run; continuing could repeat or skip a
// user-facing message.
func (a *messageAction) Execute(ctx context.Context, env *Env, run *model.Run) (Result, error) {
	body := expr.Resolve(a.label, run.Context)
	if _, err := env.Adapter.SendText(ctx, env.Tenant, run.UserPhone, body); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
