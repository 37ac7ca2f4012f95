package model

import "time"

type RunStatus string

const RUN_QUEUED RunStatus = "queued"
const RUN_RUNNING RunStatus = "running"
const RUN_WAITING RunStatus = "waiting"
const RUN_FINISHED RunStatus = "finished"
const RUN_FAILED RunStatus = "failed"
const RUN_ERROR RunStatus = "error"

// IsTerminal reports whether the run can never execute another node.
func (s RunStatus) IsTerminal() bool {
	return s == RUN_FINISHED || s == RUN_FAILED || s == RUN_ERROR
}

type WaitKind string

const WAIT_BUTTON_REPLY WaitKind = "button_reply"
const WAIT_TEXT_REPLY WaitKind = "text_reply"

// Run is one execution of a flow graph against one end user. Context is
// private to the run; the interpreter is its only writer. The store
// checkpoints the whole record after every node execution.
type Run struct {
	Id            string         `json:"id"`
	FlowId        string         `json:"flowId"`
	TenantId      string         `json:"tenantId"`
	UserPhone     string         `json:"userPhone"`
	Status        RunStatus      `json:"status"`
	CurrentNodeId string         `json:"currentNodeId,omitempty"`
	Context       map[string]any `json:"context"`
	WaitingNodeId string         `json:"waitingNodeId,omitempty"`
	WaitingFor    WaitKind       `json:"waitingFor,omitempty"`
	ExpiresAt     *time.Time     `json:"expiresAt,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Expired reports whether a waiting run's reply window has closed.
func (r *Run) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// ClearWait resets the waiting markers when a matching reply arrives.
func (r *Run) ClearWait() {
	r.Status = RUN_RUNNING
	r.WaitingNodeId = ""
	r.WaitingFor = ""
	r.ExpiresAt = nil
}
