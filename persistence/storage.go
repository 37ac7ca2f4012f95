package persistence

import (
	"fmt"
	"time"

	"github.com/convoflow/convoflow/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type NotFoundError struct {
	Kind string
	Id   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Id)
}

// RunStore owns run persistence. The interpreter checkpoints through
// Save after every node execution; FindWaiting returns the most
// recently updated non-expired waiting run for the user, or nil when
// there is none.
type RunStore interface {
	Create(flowId string, tenantId string, userPhone string) (*model.Run, error)
	Save(run *model.Run) error
	Get(tenantId string, runId string) (*model.Run, error)
	FindWaiting(tenantId string, userPhone string) (*model.Run, error)
	// PopExpired removes and returns waiting runs whose reply window
	// closed at or before now. Used by the expiry reaper.
	PopExpired(now time.Time) ([]*model.Run, error)
}

type FlowStore interface {
	Save(flow *model.Flow) error
	Get(tenantId string, flowId string) (*model.Flow, error)
	ListActive(tenantId string) ([]*model.Flow, error)
	Delete(tenantId string, flowId string) error
}

type TenantStore interface {
	Save(tenant *model.Tenant) error
	Get(id string) (*model.Tenant, error)
	GetByPhoneNumberId(phoneNumberId string) (*model.Tenant, error)
	List() ([]*model.Tenant, error)
}

type ContactStore interface {
	Save(contact *model.Contact) error
	FindByPhone(tenantId string, phone string) (*model.Contact, error)
	ListByTenant(tenantId string) ([]*model.Contact, error)
}

type MessageLog interface {
	Append(msg *model.Message) error
}

type CartStore interface {
	Get(tenantId string, userPhone string) (*model.Cart, error)
	Save(cart *model.Cart) error
	Delete(tenantId string, userPhone string) error
}

type OrderStore interface {
	Save(order *model.Order) error
	Get(tenantId string, orderId string) (*model.Order, error)
}

type ProductStore interface {
	Save(product *model.Product) error
	Get(tenantId string, productId string) (*model.Product, error)
}
