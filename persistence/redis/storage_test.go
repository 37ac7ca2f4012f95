package redis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
)

func TestTenantDaoPhoneIndex(t *testing.T) {
	storage := newTestStorage(t)

	tenant := &model.Tenant{
		Id:            "t1",
		Name:          "acme",
		PhoneNumberId: "10203040",
		AccessToken:   "token-1",
	}
	require.NoError(t, storage.Tenants.Save(tenant))

	byId, err := storage.Tenants.Get("t1")
	require.NoError(t, err)
	require.Equal(t, "acme", byId.Name)

	byPhone, err := storage.Tenants.GetByPhoneNumberId("10203040")
	require.NoError(t, err)
	require.Equal(t, "t1", byPhone.Id)

	_, err = storage.Tenants.GetByPhoneNumberId("unknown")
	require.Error(t, err)
	_, ok := err.(persistence.NotFoundError)
	require.True(t, ok)

	tenants, err := storage.Tenants.List()
	require.NoError(t, err)
	require.Len(t, tenants, 1)
}

func TestFlowDaoListActive(t *testing.T) {
	storage := newTestStorage(t)

	active := &model.Flow{Id: "fl-1", TenantId: "t1", Name: "welcome", Active: true}
	inactive := &model.Flow{Id: "fl-2", TenantId: "t1", Name: "draft", Active: false}
	require.NoError(t, storage.Flows.Save(active))
	require.NoError(t, storage.Flows.Save(inactive))

	flows, err := storage.Flows.ListActive("t1")
	require.NoError(t, err)
	require.Len(t, flows, 1)
	require.Equal(t, "fl-1", flows[0].Id)

	require.NoError(t, storage.Flows.Delete("t1", "fl-1"))
	flows, err = storage.Flows.ListActive("t1")
	require.NoError(t, err)
	require.Empty(t, flows)
}

func TestCartDaoLifecycle(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.Carts.Get("t1", "919900001111")
	require.Error(t, err)
	_, ok := err.(persistence.NotFoundError)
	require.True(t, ok)

	cart := &model.Cart{
		TenantId:  "t1",
		UserPhone: "919900001111",
		Items:     []model.CartItem{{ProductId: "p1", Qty: 2, Price: 50}},
		Total:     100,
	}
	require.NoError(t, storage.Carts.Save(cart))

	loaded, err := storage.Carts.Get("t1", "919900001111")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	require.Equal(t, 100.0, loaded.Total)

	require.NoError(t, storage.Carts.Delete("t1", "919900001111"))
	_, err = storage.Carts.Get("t1", "919900001111")
	require.Error(t, err)
}
