package action

import (
	"context"

	"github.com/convoflow/convoflow/model"
)

var _ Action = new(inputAction)

// inputAction marks the graph entry point. It has no side effect; the
// run just moves along its default edge.
type inputAction struct {
	baseAction
}

func (a *inputAction) Execute(ctx context.Context, env *Env, run *model.Run) (Result, error) {
	return Result{}, nil
}
