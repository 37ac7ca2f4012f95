package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/convoflow/convoflow/engine"
	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Dispatcher is the trigger boundary for inbound messages. It parses
// the provider webhook envelope, records the message, and either
// resumes the user's waiting run or starts a keyword-triggered flow.
// Processing happens off the webhook goroutine on a worker so the
// provider gets its 200 immediately.
type Dispatcher struct {
	eng      *engine.Engine
	flows    *flow.Service
	runs     persistence.RunStore
	tenants  persistence.TenantStore
	contacts persistence.ContactStore
	messages persistence.MessageLog
	worker   *util.Worker
}

type inbound struct {
	TenantId string
	From     string
	Text     string
	ButtonId string
}

func NewDispatcher(eng *engine.Engine, flows *flow.Service, runs persistence.RunStore, tenants persistence.TenantStore, contacts persistence.ContactStore, messages persistence.MessageLog, capacity int, wg *sync.WaitGroup) *Dispatcher {
	if capacity <= 0 {
		capacity = 512
	}
	d := &Dispatcher{
		eng:      eng,
		flows:    flows,
		runs:     runs,
		tenants:  tenants,
		contacts: contacts,
		messages: messages,
	}
	d.worker = util.NewWorker("inbound-dispatch", wg, d.process, capacity)
	return d
}

func (d *Dispatcher) Start() {
	d.worker.Start()
}

func (d *Dispatcher) Stop() {
	d.worker.Stop()
}

// HandleWebhook extracts the message from the provider envelope and
// queues it. Envelopes without a message (delivery status callbacks,
// unknown tenants) are acknowledged and dropped.
func (d *Dispatcher) HandleWebhook(payload []byte) error {
	value := gjson.GetBytes(payload, "entry.0.changes.0.value")
	if !value.Exists() {
		return nil
	}
	phoneNumberId := value.Get("metadata.phone_number_id").String()
	if phoneNumberId == "" {
		return nil
	}
	tenant, err := d.tenants.GetByPhoneNumberId(phoneNumberId)
	if err != nil {
		if _, ok := err.(persistence.NotFoundError); ok {
			logger.Debug("webhook for unknown phone number id", zap.String("phoneNumberId", phoneNumberId))
			return nil
		}
		return err
	}
	msg := value.Get("messages.0")
	if !msg.Exists() {
		return nil
	}
	in := inbound{
		TenantId: tenant.Id,
		From:     msg.Get("from").String(),
		Text:     msg.Get("text.body").String(),
		ButtonId: msg.Get("interactive.button_reply.id").String(),
	}
	if in.From == "" {
		return nil
	}
	select {
	case d.worker.Sender() <- in:
		return nil
	default:
		return fmt.Errorf("inbound dispatch queue full")
	}
}

func (d *Dispatcher) process(task util.Task) error {
	in, ok := task.(inbound)
	if !ok {
		return fmt.Errorf("unexpected task type %T", task)
	}
	ctx := context.Background()
	tenant, err := d.tenants.Get(in.TenantId)
	if err != nil {
		return err
	}
	d.ensureContact(tenant, in.From)
	d.recordInbound(tenant, in)

	reply := model.Reply{Id: in.ButtonId, Text: in.Text}

	// a waiting run consumes the reply; otherwise the message may
	// start a keyword-triggered flow
	waiting, err := d.runs.FindWaiting(tenant.Id, in.From)
	if err != nil {
		return err
	}
	if waiting != nil {
		return d.eng.Resume(ctx, tenant.Id, in.From, reply)
	}
	return d.keywordTrigger(ctx, tenant, in)
}

func (d *Dispatcher) keywordTrigger(ctx context.Context, tenant *model.Tenant, in inbound) error {
	if in.Text == "" {
		return nil
	}
	flows, err := d.flows.ListActive(tenant.Id)
	if err != nil {
		return err
	}
	text := strings.ToLower(strings.TrimSpace(in.Text))
	for _, def := range flows {
		if def.Trigger == nil {
			continue
		}
		for _, keyword := range def.Trigger.Keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				logger.Info("keyword trigger matched", zap.String("flowId", def.Id), zap.String("keyword", keyword), zap.String("userPhone", in.From))
				_, err := d.eng.StartFlow(ctx, tenant.Id, def.Id, in.From)
				return err
			}
		}
	}
	return nil
}

func (d *Dispatcher) ensureContact(tenant *model.Tenant, phone string) {
	_, err := d.contacts.FindByPhone(tenant.Id, phone)
	if err == nil {
		return
	}
	if _, ok := err.(persistence.NotFoundError); !ok {
		logger.Error("error looking up contact", zap.String("phone", phone), zap.Error(err))
		return
	}
	if err := d.contacts.Save(&model.Contact{TenantId: tenant.Id, Phone: phone}); err != nil {
		logger.Error("error creating contact", zap.String("phone", phone), zap.Error(err))
	}
}

func (d *Dispatcher) recordInbound(tenant *model.Tenant, in inbound) {
	body := in.Text
	if body == "" {
		body = in.ButtonId
	}
	err := d.messages.Append(&model.Message{
		TenantId:  tenant.Id,
		From:      in.From,
		To:        tenant.PhoneNumberId,
		Body:      body,
		Direction: model.DIRECTION_INBOUND,
	})
	if err != nil {
		logger.Error("error recording inbound message", zap.String("from", in.From), zap.Error(err))
	}
}
