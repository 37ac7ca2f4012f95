package action

import (
	"context"

	"github.com/convoflow/convoflow/expr"
	"github.com/convoflow/convoflow/model"
)

var _ Action = new(conditionAction)

// conditionAction routes through the "true" or "false" edge. Malformed
// comparisons evaluate to false rather than failing the run; the
// authoring surface is untrusted input.
type conditionAction struct {
	baseAction
	left     string
	operator string
	right    any
}

func newConditionAction(base baseAction, data map[string]any) (*conditionAction, error) {
	var payload struct {
		Left     string `mapstructure:"left"`
		Operator string `mapstructure:"operator"`
		Right    any    `mapstructure:"right"`
	}
	if err := decodeData(base.id, data, &payload); err != nil {
		return nil, err
	}
	return &conditionAction{
		baseAction: base,
		left:       payload.Left,
		operator:   payload.Operator,
		right:      payload.Right,
	}, nil
}

func (a *conditionAction) Execute(ctx context.Context, env *Env, run *model.Run) (Result, error) {
	if expr.Evaluate(run.Context, a.left, a.operator, a.right) {
		return Result{Handle: "true"}, nil
	}
	return Result{Handle: "false"}, nil
}
