package redis

import (
	rd "github.com/go-redis/redis/v9"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
)

// Storage bundles every redis-backed store behind one construction
// point so wiring stays in one place.
type Storage struct {
	Runs     persistence.RunStore
	Flows    persistence.FlowStore
	Tenants  persistence.TenantStore
	Contacts persistence.ContactStore
	Messages persistence.MessageLog
	Carts    persistence.CartStore
	Orders   persistence.OrderStore
	Products persistence.ProductStore
}

func NewStorage(conf Config) *Storage {
	return newStorage(*newBaseDao(conf))
}

// NewStorageWithClient builds the stores on an injected client. Tests
// pass a client pointed at miniredis.
func NewStorageWithClient(client rd.UniversalClient, namespace string) *Storage {
	return newStorage(*newBaseDaoWithClient(client, namespace))
}

func newStorage(base baseDao) *Storage {
	return &Storage{
		Runs:     NewRedisRunDao(base, util.NewJsonEncoderDecoder[model.Run]()),
		Flows:    NewRedisFlowDao(base, util.NewJsonEncoderDecoder[model.Flow]()),
		Tenants:  NewRedisTenantDao(base, util.NewJsonEncoderDecoder[model.Tenant]()),
		Contacts: NewRedisContactDao(base, util.NewJsonEncoderDecoder[model.Contact]()),
		Messages: NewRedisMessageDao(base, util.NewJsonEncoderDecoder[model.Message]()),
		Carts:    NewRedisCartDao(base, util.NewJsonEncoderDecoder[model.Cart]()),
		Orders:   NewRedisOrderDao(base, util.NewJsonEncoderDecoder[model.Order]()),
		Products: NewRedisProductDao(base, util.NewJsonEncoderDecoder[model.Product]()),
	}
}
