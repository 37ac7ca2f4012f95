package action

import (
	"context"
	"fmt"

	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"go.uber.org/zap"
)

var _ Action = new(callApiAction)

// callApiAction posts {user, context} to an authored webhook. Failures
// are logged and swallowed; an unreachable webhook must not strand the
// conversation.
type callApiAction struct {
	baseAction
	url string
}

func newCallApiAction(base baseAction, data map[string]any) (*callApiAction, error) {
	var payload struct {
		URL string `mapstructure:"url"`
	}
	if err := decodeData(base.id, data, &payload); err != nil {
		return nil, err
	}
	return &callApiAction{baseAction: base, url: payload.URL}, nil
}

func (a *callApiAction) Validate() error {
	if a.url == "" {
		return fmt.Errorf("nodeId=%s, call_api node should have url", a.id)
	}
	return nil
}

func (a *callApiAction) Execute(ctx context.Context, env *Env, run *model.Run) (Result, error) {
	body := map[string]any{
		"user":    run.UserPhone,
		"context": run.Context,
	}
	resp, err := env.HttpClient.R().SetContext(ctx).SetBody(body).Post(a.url)
	if err != nil {
		logger.Error("api call failed", zap.String("nodeId", a.id), zap.String("url", a.url), zap.Error(err))
		return Result{}, nil
	}
	if resp.IsError() {
		logger.Error("api call returned error status", zap.String("nodeId", a.id), zap.String("url", a.url), zap.Int("status", resp.StatusCode()))
	}
	return Result{}, nil
}
