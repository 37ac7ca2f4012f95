package flow

import (
	"fmt"

	"github.com/convoflow/convoflow/action"
	"github.com/convoflow/convoflow/model"
)

// Flow is the executable form of an authored graph: actions keyed by
// node id plus an outgoing-edge index. Immutable once converted.
type Flow struct {
	Id          string
	TenantId    string
	StartNodeId string
	actions     map[string]action.Action
	edges       map[string][]model.Edge
}

// Convert builds the executable flow. Unknown node types, duplicate
// node ids, dangling edges and a missing start node all fail here so a
// malformed graph never reaches the interpreter.
func Convert(def *model.Flow) (*Flow, error) {
	actions := make(map[string]action.Action, len(def.Nodes))
	for _, node := range def.Nodes {
		if _, ok := actions[node.Id]; ok {
			return nil, fmt.Errorf("node id %s is duplicate", node.Id)
		}
		act, err := action.FromNode(node)
		if err != nil {
			return nil, err
		}
		actions[node.Id] = act
	}
	edges := make(map[string][]model.Edge)
	for _, edge := range def.Edges {
		if _, ok := actions[edge.Source]; !ok {
			return nil, fmt.Errorf("edge source %s is not a node", edge.Source)
		}
		if _, ok := actions[edge.Target]; !ok {
			return nil, fmt.Errorf("edge target %s is not a node", edge.Target)
		}
		edges[edge.Source] = append(edges[edge.Source], edge)
	}
	start, err := findStartNode(def)
	if err != nil {
		return nil, err
	}
	return &Flow{
		Id:          def.Id,
		TenantId:    def.TenantId,
		StartNodeId: start,
		actions:     actions,
		edges:       edges,
	}, nil
}

// Validate runs Convert plus the per-action payload checks. The REST
// surface calls it before a flow definition is accepted.
func Validate(def *model.Flow) error {
	fl, err := Convert(def)
	if err != nil {
		return err
	}
	for _, act := range fl.actions {
		if err := act.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// findStartNode prefers the node typed input; failing that, the unique
// node with no incoming edge.
func findStartNode(def *model.Flow) (string, error) {
	start := ""
	for _, node := range def.Nodes {
		if node.Type == model.NODE_TYPE_INPUT {
			if start != "" {
				return "", fmt.Errorf("flow %s has more than one input node", def.Id)
			}
			start = node.Id
		}
	}
	if start != "" {
		return start, nil
	}
	hasIncoming := make(map[string]bool)
	for _, edge := range def.Edges {
		hasIncoming[edge.Target] = true
	}
	for _, node := range def.Nodes {
		if !hasIncoming[node.Id] {
			if start != "" {
				return "", fmt.Errorf("flow %s has no unique start node", def.Id)
			}
			start = node.Id
		}
	}
	if start == "" {
		return "", fmt.Errorf("flow %s has no start node", def.Id)
	}
	return start, nil
}

func (f *Flow) Action(nodeId string) (action.Action, bool) {
	act, ok := f.actions[nodeId]
	return act, ok
}

// Next selects the outgoing edge for a handle. An empty handle matches
// the node's single default (unlabeled) edge.
func (f *Flow) Next(nodeId string, handle string) (string, bool) {
	for _, edge := range f.edges[nodeId] {
		if edge.SourceHandle == handle {
			return edge.Target, true
		}
	}
	return "", false
}
