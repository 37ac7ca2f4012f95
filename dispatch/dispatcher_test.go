package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rd "github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/convoflow/channel"
	"github.com/convoflow/convoflow/config"
	"github.com/convoflow/convoflow/engine"
	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence/redis"
)

type fakeAdapter struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeAdapter) SendText(ctx context.Context, tenant *model.Tenant, to string, body string) (*channel.DeliveryReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, body)
	return &channel.DeliveryReceipt{ProviderMessageId: "wamid-test"}, nil
}

func (f *fakeAdapter) SendInteractive(ctx context.Context, tenant *model.Tenant, to string, prompt channel.Interactive) (*channel.DeliveryReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, prompt.Title)
	return &channel.DeliveryReceipt{ProviderMessageId: "wamid-test"}, nil
}

func (f *fakeAdapter) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeCommerce struct{}

func (f *fakeCommerce) AddToCart(ctx context.Context, tenant *model.Tenant, userPhone string, productId string, qty int) error {
	return nil
}

func (f *fakeCommerce) CreateOrderAndNotify(ctx context.Context, tenant *model.Tenant, userPhone string, nodeConfig map[string]any) (*model.Order, error) {
	return nil, nil
}

type dispatcherEnv struct {
	storage    *redis.Storage
	flows      *flow.Service
	adapter    *fakeAdapter
	engine     *engine.Engine
	dispatcher *Dispatcher
}

func newDispatcherEnv(t *testing.T) *dispatcherEnv {
	mr := miniredis.RunT(t)
	client := rd.NewUniversalClient(&rd.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { client.Close() })
	storage := redis.NewStorageWithClient(client, "test")

	require.NoError(t, storage.Tenants.Save(&model.Tenant{
		Id: "t1", Name: "acme", PhoneNumberId: "10203040", AccessToken: "tok",
	}))

	flows := flow.NewService(storage.Flows)
	adapter := &fakeAdapter{}
	eng := engine.New(config.EngineConfig{MaxSteps: 20}, storage.Runs, flows, storage.Tenants, adapter, &fakeCommerce{})

	var wg sync.WaitGroup
	d := NewDispatcher(eng, flows, storage.Runs, storage.Tenants, storage.Contacts, storage.Messages, 16, &wg)
	d.Start()
	t.Cleanup(func() {
		d.Stop()
		wg.Wait()
	})
	return &dispatcherEnv{storage: storage, flows: flows, adapter: adapter, engine: eng, dispatcher: d}
}

func textPayload(phoneNumberId string, from string, body string) []byte {
	return []byte(fmt.Sprintf(`{
		"entry": [{"changes": [{"value": {
			"metadata": {"phone_number_id": %q},
			"messages": [{"from": %q, "text": {"body": %q}}]
		}}]}]
	}`, phoneNumberId, from, body))
}

func buttonPayload(phoneNumberId string, from string, buttonId string) []byte {
	return []byte(fmt.Sprintf(`{
		"entry": [{"changes": [{"value": {
			"metadata": {"phone_number_id": %q},
			"messages": [{"from": %q, "interactive": {"button_reply": {"id": %q, "title": "Buy"}}}]
		}}]}]
	}`, phoneNumberId, from, buttonId))
}

func TestHandleWebhookEnvelopes(t *testing.T) {
	env := newDispatcherEnv(t)
	for scenario, payload := range map[string][]byte{
		"malformed payload":        []byte(`{"object": "whatsapp_business_account"}`),
		"status only callback":     []byte(`{"entry": [{"changes": [{"value": {"metadata": {"phone_number_id": "10203040"}, "statuses": [{"status": "delivered"}]}}]}]}`),
		"unknown phone number id":  textPayload("999", "919900001111", "hi"),
		"message without sender":   []byte(`{"entry": [{"changes": [{"value": {"metadata": {"phone_number_id": "10203040"}, "messages": [{"text": {"body": "hi"}}]}}]}]}`),
	} {
		t.Run(scenario, func(t *testing.T) {
			require.NoError(t, env.dispatcher.HandleWebhook(payload))
		})
	}
}

func TestKeywordTriggerStartsFlow(t *testing.T) {
	env := newDispatcherEnv(t)
	def := &model.Flow{
		Id:       "fl-order",
		TenantId: "t1",
		Name:     "order-intake",
		Active:   true,
		Trigger:  &model.Trigger{Keywords: []string{"order"}},
		Nodes: []model.Node{
			{Id: "n1", Type: model.NODE_TYPE_INPUT},
			{Id: "n2", Type: model.NODE_TYPE_MESSAGE, Data: map[string]any{"label": "Welcome to ordering"}},
		},
		Edges: []model.Edge{{Source: "n1", Target: "n2"}},
	}
	require.NoError(t, env.flows.Save(def))

	require.NoError(t, env.dispatcher.HandleWebhook(textPayload("10203040", "919900001111", "I want to ORDER now")))

	require.Eventually(t, func() bool {
		sent := env.adapter.sent()
		return len(sent) == 1 && sent[0] == "Welcome to ordering"
	}, 2*time.Second, 10*time.Millisecond)

	// first contact from this phone gets recorded
	require.Eventually(t, func() bool {
		contact, err := env.storage.Contacts.FindByPhone("t1", "919900001111")
		return err == nil && contact.Phone == "919900001111"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNoKeywordMatchIsNoOp(t *testing.T) {
	env := newDispatcherEnv(t)
	def := &model.Flow{
		Id:       "fl-order",
		TenantId: "t1",
		Name:     "order-intake",
		Active:   true,
		Trigger:  &model.Trigger{Keywords: []string{"order"}},
		Nodes: []model.Node{
			{Id: "n1", Type: model.NODE_TYPE_INPUT},
			{Id: "n2", Type: model.NODE_TYPE_MESSAGE, Data: map[string]any{"label": "Welcome to ordering"}},
		},
		Edges: []model.Edge{{Source: "n1", Target: "n2"}},
	}
	require.NoError(t, env.flows.Save(def))

	require.NoError(t, env.dispatcher.HandleWebhook(textPayload("10203040", "919900001111", "hello there")))

	// the contact record proves the message was processed without a send
	require.Eventually(t, func() bool {
		_, err := env.storage.Contacts.FindByPhone("t1", "919900001111")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	require.Empty(t, env.adapter.sent())
}

func TestButtonReplyResumesWaitingRun(t *testing.T) {
	env := newDispatcherEnv(t)
	def := &model.Flow{
		Id:       "fl-menu",
		TenantId: "t1",
		Name:     "menu",
		Active:   true,
		Nodes: []model.Node{
			{Id: "n1", Type: model.NODE_TYPE_INPUT},
			{Id: "n2", Type: model.NODE_TYPE_MEDIA_BUTTONS, Data: map[string]any{
				"title": "Choose", "buttons": []any{"Buy", "Cancel"},
			}},
			{Id: "n3", Type: model.NODE_TYPE_MESSAGE, Data: map[string]any{"label": "buying"}},
		},
		Edges: []model.Edge{
			{Source: "n1", Target: "n2"},
			{Source: "n2", Target: "n3", SourceHandle: "btn-0"},
		},
	}
	require.NoError(t, env.flows.Save(def))

	runId, err := env.engine.StartFlow(context.Background(), "t1", "fl-menu", "919900001111")
	require.NoError(t, err)
	run, err := env.storage.Runs.Get("t1", runId)
	require.NoError(t, err)
	require.Equal(t, model.RUN_WAITING, run.Status)

	require.NoError(t, env.dispatcher.HandleWebhook(buttonPayload("10203040", "919900001111", "btn-0")))

	require.Eventually(t, func() bool {
		run, err := env.storage.Runs.Get("t1", runId)
		return err == nil && run.Status == model.RUN_FINISHED
	}, 2*time.Second, 10*time.Millisecond)
}
