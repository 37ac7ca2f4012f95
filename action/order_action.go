package action

import (
	"context"

	"github.com/convoflow/convoflow/model"
)

var _ Action = new(createOrderAction)

// createOrderAction is always terminal: the commerce collaborator sends
// the confirmation and the run ends here.
type createOrderAction struct {
	baseAction
	config map[string]any
}

func newCreateOrderAction(base baseAction, data map[string]any) (*createOrderAction, error) {
	return &createOrderAction{baseAction: base, config: data}, nil
}

func (a *createOrderAction) Execute(ctx context.Context, env *Env, run *model.Run) (Result, error) {
	if _, err := env.Commerce.CreateOrderAndNotify(ctx, env.Tenant, run.UserPhone, a.config); err != nil {
		return Result{}, err
	}
	return Result{Terminal: true}, nil
}
