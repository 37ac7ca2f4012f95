package action

import (
	"context"
	"fmt"

	"github.com/convoflow/convoflow/channel"
	"github.com/convoflow/convoflow/expr"
	"github.com/convoflow/convoflow/model"
)

var _ Action = new(mediaButtonsAction)

type mediaButtonsAction struct {
	baseAction
	title   string
	image   string
	buttons []channel.Button
}

func newMediaButtonsAction(base baseAction, data map[string]any) (*mediaButtonsAction, error) {
	var payload struct {
		Title   string `mapstructure:"title"`
		Image   string `mapstructure:"image"`
		Buttons []any  `mapstructure:"buttons"`
	}
	if err := decodeData(base.id, data, &payload); err != nil {
		return nil, err
	}
	buttons, err := normalizeButtons(base.id, payload.Buttons)
	if err != nil {
		return nil, err
	}
	return &mediaButtonsAction{
		baseAction: base,
		title:      payload.Title,
		image:      payload.Image,
		buttons:    buttons,
	}, nil
}

// normalizeButtons accepts either bare labels or {id, label} documents.
// Bare labels get positional ids so reply routing always has a stable
// identifier to match edges against.
func normalizeButtons(nodeId string, raw []any) ([]channel.Button, error) {
	buttons := make([]channel.Button, 0, len(raw))
	for i, entry := range raw {
		switch b := entry.(type) {
		case string:
			buttons = append(buttons, channel.Button{
				Id:    fmt.Sprintf("btn-%d", i),
				Label: b,
			})
		case map[string]any:
			id, _ := b["id"].(string)
			label, _ := b["label"].(string)
			if id == "" {
				id = fmt.Sprintf("btn-%d", i)
			}
			buttons = append(buttons, channel.Button{Id: id, Label: label})
		default:
			return nil, fmt.Errorf("nodeId=%s, button %d has unsupported shape", nodeId, i)
		}
	}
	return buttons, nil
}

func (a *mediaButtonsAction) Validate() error {
	if len(a.buttons) == 0 {
		return fmt.Errorf("nodeId=%s, mediaButtons node should have buttons", a.id)
	}
	return nil
}

func (a *mediaButtonsAction) Execute(ctx context.Context, env *Env, run *model.Run) (Result, error) {
	prompt := channel.Interactive{
		Title:   expr.Resolve(a.title, run.Context),
		Image:   a.image,
		Buttons: a.buttons,
	}
	if _, err := env.Adapter.SendInteractive(ctx, env.Tenant, run.UserPhone, prompt); err != nil {
		return Result{}, err
	}
	return Result{Suspend: true, WaitFor: model.WAIT_BUTTON_REPLY}, nil
}
