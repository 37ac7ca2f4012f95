package model

import "time"

type Direction string

const DIRECTION_INBOUND Direction = "inbound"
const DIRECTION_OUTBOUND Direction = "outbound"

type Message struct {
	Id        string    `json:"id"`
	TenantId  string    `json:"tenantId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Direction Direction `json:"direction"`
	Status    string    `json:"status,omitempty"`
	Media     string    `json:"media,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tenant holds the per-tenant messaging credentials. PhoneNumberId is
// the sender identity registered with the provider and the key inbound
// webhooks are routed by.
type Tenant struct {
	Id            string `json:"id"`
	Name          string `json:"name"`
	PhoneNumberId string `json:"phoneNumberId"`
	AccessToken   string `json:"accessToken"`
}

type Contact struct {
	Id       string `json:"id"`
	TenantId string `json:"tenantId"`
	Phone    string `json:"phone"`
	Name     string `json:"name,omitempty"`
}

// Reply is the normalized form of an end-user response: the button id
// for interactive replies, the raw text otherwise.
type Reply struct {
	Id   string
	Text string
}

// Value returns the identifier resumption matches edges against.
func (r Reply) Value() string {
	if r.Id != "" {
		return r.Id
	}
	return r.Text
}
