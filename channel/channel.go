package channel

import (
	"context"

	"github.com/convoflow/convoflow/model"
)

// Button is one interactive reply choice. Ids are positional
// ("btn-0"...) when the authoring payload supplies labels only.
type Button struct {
	Id    string
	Label string
}

type Interactive struct {
	Title   string
	Image   string
	Buttons []Button
}

type DeliveryReceipt struct {
	ProviderMessageId string
}

// Adapter is the outbound messaging boundary. Implementations must
// tolerate concurrent calls from many runs; the engine does not retry.
type Adapter interface {
	SendText(ctx context.Context, tenant *model.Tenant, to string, body string) (*DeliveryReceipt, error)
	SendInteractive(ctx context.Context, tenant *model.Tenant, to string, prompt Interactive) (*DeliveryReceipt, error)
}
