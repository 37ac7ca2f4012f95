package model

import "time"

type NodeType string

const (
	NODE_TYPE_INPUT         NodeType = "input"
	NODE_TYPE_MESSAGE       NodeType = "message"
	NODE_TYPE_MEDIA_BUTTONS NodeType = "mediaButtons"
	NODE_TYPE_CONDITION     NodeType = "condition"
	NODE_TYPE_WAIT          NodeType = "wait"
	NODE_TYPE_CALL_API      NodeType = "call_api"
	NODE_TYPE_SET_VARIABLE  NodeType = "set_variable"
	NODE_TYPE_CAPTURE       NodeType = "capture"
	NODE_TYPE_ADD_TO_CART   NodeType = "add_to_cart"
	NODE_TYPE_CREATE_ORDER  NodeType = "create_order"
)

// Node is one authored step of a flow graph. Data is the free-form
// payload produced by the graph editor; each node type decodes the keys
// it understands.
type Node struct {
	Id   string         `json:"id"`
	Type NodeType       `json:"type"`
	Data map[string]any `json:"data"`
}

// Edge connects two nodes. An empty SourceHandle marks the single
// default successor; a non-empty one is a labeled branch (condition
// true/false, a button reply id, or the capture onInput handle).
type Edge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

type Trigger struct {
	Keywords []string `json:"keywords,omitempty"`
}

type ScheduleType string

const SCHEDULE_TYPE_DAILY ScheduleType = "daily"
const SCHEDULE_TYPE_WEEKLY ScheduleType = "weekly"

type Schedule struct {
	Type     ScheduleType `json:"type"`
	Time     string       `json:"time"` // "HH:MM"
	Days     []string     `json:"days,omitempty"`
	Timezone string       `json:"timezone,omitempty"`
}

type Flow struct {
	Id        string    `json:"id"`
	TenantId  string    `json:"tenantId"`
	Name      string    `json:"name"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	Active    bool      `json:"active"`
	Trigger   *Trigger  `json:"trigger,omitempty"`
	Schedule  *Schedule `json:"schedule,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
