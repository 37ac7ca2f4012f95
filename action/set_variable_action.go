package action

import (
	"context"
	"fmt"

	"github.com/convoflow/convoflow/model"
)

var _ Action = new(setVariableAction)

type setVariableAction struct {
	baseAction
	key   string
	value any
}

func newSetVariableAction(base baseAction, data map[string]any) (*setVariableAction, error) {
	var payload struct {
		Key   string `mapstructure:"key"`
		Value any    `mapstructure:"value"`
	}
	if err := decodeData(base.id, data, &payload); err != nil {
		return nil, err
	}
	return &setVariableAction{baseAction: base, key: payload.Key, value: payload.Value}, nil
}

func (a *setVariableAction) Validate() error {
	if a.key == "" {
		return fmt.Errorf("nodeId=%s, set_variable node should have key", a.id)
	}
	return nil
}

func (a *setVariableAction) Execute(ctx context.Context, env *Env, run *model.Run) (Result, error) {
	run.Context[a.key] = a.value
	return Result{}, nil
}
