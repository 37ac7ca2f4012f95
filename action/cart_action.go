package action

import (
	"context"
	"fmt"

	"github.com/convoflow/convoflow/model"
)

var _ Action = new(addToCartAction)

// addToCartAction mutates external cart state, not the run context.
type addToCartAction struct {
	baseAction
	productId string
	qty       int
}

func newAddToCartAction(base baseAction, data map[string]any) (*addToCartAction, error) {
	var payload struct {
		ProductId string `mapstructure:"productId"`
		Qty       int    `mapstructure:"qty"`
	}
	if err := decodeData(base.id, data, &payload); err != nil {
		return nil, err
	}
	if payload.Qty == 0 {
		payload.Qty = 1
	}
	return &addToCartAction{
		baseAction: base,
		productId:  payload.ProductId,
		qty:        payload.Qty,
	}, nil
}

func (a *addToCartAction) Validate() error {
	if a.productId == "" {
		return fmt.Errorf("nodeId=%s, add_to_cart node should have productId", a.id)
	}
	return nil
}

func (a *addToCartAction) Execute(ctx context.Context, env *Env, run *model.Run) (Result, error) {
	if err := env.Commerce.AddToCart(ctx, env.Tenant, run.UserPhone, a.productId, a.qty); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
