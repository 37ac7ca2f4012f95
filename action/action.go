package action

import (
	"context"
	"fmt"
	"time"

	"github.com/convoflow/convoflow/channel"
	"github.com/convoflow/convoflow/commerce"
	"github.com/convoflow/convoflow/model"
	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"
)

// Env carries the collaborators a node side effect may touch. One Env
// is built per step-loop invocation; actions themselves hold no state
// beyond their decoded payload.
type Env struct {
	Tenant        *model.Tenant
	Adapter       channel.Adapter
	Commerce      commerce.Service
	HttpClient    *resty.Client
	MaxWait       time.Duration
	CaptureExpiry time.Duration
}

// Result tells the interpreter how to move on after a side effect.
type Result struct {
	// Suspend parks the run in waiting until an external reply arrives.
	Suspend bool
	WaitFor model.WaitKind
	// Expiry bounds how long a suspended run accepts a reply.
	Expiry time.Duration
	// Handle selects a labeled outgoing edge; empty means the default
	// (unlabeled) edge.
	Handle string
	// Terminal ends the run regardless of outgoing edges.
	Terminal bool
}

type Action interface {
	Id() string
	Type() model.NodeType
	Execute(ctx context.Context, env *Env, run *model.Run) (Result, error)
	Validate() error
}

type baseAction struct {
	id      string
	actType model.NodeType
}

func newBaseAction(id string, actType model.NodeType) baseAction {
	return baseAction{id: id, actType: actType}
}

func (ba *baseAction) Id() string {
	return ba.id
}

func (ba *baseAction) Type() model.NodeType {
	return ba.actType
}

func (ba *baseAction) Validate() error {
	return nil
}

func decodeData(nodeId string, data map[string]any, out any) error {
	if err := mapstructure.WeakDecode(data, out); err != nil {
		return fmt.Errorf("nodeId=%s, bad node data: %w", nodeId, err)
	}
	return nil
}

// FromNode builds the executable action for a node. The node-type set
// is closed; anything else is rejected when the flow is loaded.
func FromNode(node model.Node) (Action, error) {
	base := newBaseAction(node.Id, node.Type)
	switch node.Type {
	case model.NODE_TYPE_INPUT:
		return &inputAction{baseAction: base}, nil
	case model.NODE_TYPE_MESSAGE:
		return newMessageAction(base, node.Data)
	case model.NODE_TYPE_MEDIA_BUTTONS:
		return newMediaButtonsAction(base, node.Data)
	case model.NODE_TYPE_CONDITION:
		return newConditionAction(base, node.Data)
	case model.NODE_TYPE_WAIT:
		return newWaitAction(base, node.Data)
	case model.NODE_TYPE_CALL_API:
		return newCallApiAction(base, node.Data)
	case model.NODE_TYPE_SET_VARIABLE:
		return newSetVariableAction(base, node.Data)
	case model.NODE_TYPE_CAPTURE:
		return newCaptureAction(base, node.Data)
	case model.NODE_TYPE_ADD_TO_CART:
		return newAddToCartAction(base, node.Data)
	case model.NODE_TYPE_CREATE_ORDER:
		return newCreateOrderAction(base, node.Data)
	default:
		return nil, fmt.Errorf("nodeId=%s, unknown node type %q", node.Id, node.Type)
	}
}
