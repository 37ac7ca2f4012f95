package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/convoflow/convoflow/config"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var _ Adapter = new(WhatsAppAdapter)

// WhatsAppAdapter sends through the Graph API messages endpoint and
// records every outbound message in the tenant's conversation log.
type WhatsAppAdapter struct {
	client   *resty.Client
	baseURL  string
	messages persistence.MessageLog
}

func NewWhatsAppAdapter(conf config.WhatsAppConfig, messages persistence.MessageLog) *WhatsAppAdapter {
	timeout := time.Duration(conf.TimeoutSeconds) * time.Second
	if conf.TimeoutSeconds <= 0 {
		timeout = 30 * time.Second
	}
	return &WhatsAppAdapter{
		client:   resty.New().SetTimeout(timeout),
		baseURL:  conf.BaseURL,
		messages: messages,
	}
}

func (wa *WhatsAppAdapter) SendText(ctx context.Context, tenant *model.Tenant, to string, body string) (*DeliveryReceipt, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]any{"body": body},
	}
	receipt, err := wa.post(ctx, tenant, payload)
	if err != nil {
		return nil, err
	}
	wa.logOutbound(tenant, to, body, "")
	return receipt, nil
}

func (wa *WhatsAppAdapter) SendInteractive(ctx context.Context, tenant *model.Tenant, to string, prompt Interactive) (*DeliveryReceipt, error) {
	title := prompt.Title
	if title == "" {
		title = "Choose an option"
	}
	buttons := make([]map[string]any, 0, len(prompt.Buttons))
	for _, b := range prompt.Buttons {
		buttons = append(buttons, map[string]any{
			"type":  "reply",
			"reply": map[string]any{"id": b.Id, "title": b.Label},
		})
	}
	interactive := map[string]any{
		"type":   "button",
		"body":   map[string]any{"text": title},
		"action": map[string]any{"buttons": buttons},
	}
	if prompt.Image != "" {
		interactive["header"] = map[string]any{
			"type":  "image",
			"image": map[string]any{"link": prompt.Image},
		}
	}
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive":       interactive,
	}
	receipt, err := wa.post(ctx, tenant, payload)
	if err != nil {
		return nil, err
	}
	wa.logOutbound(tenant, to, title, prompt.Image)
	return receipt, nil
}

func (wa *WhatsAppAdapter) post(ctx context.Context, tenant *model.Tenant, payload map[string]any) (*DeliveryReceipt, error) {
	url := fmt.Sprintf("%s/%s/messages", wa.baseURL, tenant.PhoneNumberId)
	resp, err := wa.client.R().
		SetContext(ctx).
		SetAuthToken(tenant.AccessToken).
		SetBody(payload).
		Post(url)
	if err != nil {
		logger.Error("whatsapp send failed", zap.String("tenantId", tenant.Id), zap.Error(err))
		return nil, err
	}
	if resp.IsError() {
		logger.Error("whatsapp api error", zap.String("tenantId", tenant.Id), zap.Int("status", resp.StatusCode()), zap.ByteString("body", resp.Body()))
		return nil, fmt.Errorf("whatsapp api status %d", resp.StatusCode())
	}
	return &DeliveryReceipt{
		ProviderMessageId: gjson.GetBytes(resp.Body(), "messages.0.id").String(),
	}, nil
}

func (wa *WhatsAppAdapter) logOutbound(tenant *model.Tenant, to string, body string, media string) {
	err := wa.messages.Append(&model.Message{
		TenantId:  tenant.Id,
		From:      tenant.PhoneNumberId,
		To:        to,
		Body:      body,
		Direction: model.DIRECTION_OUTBOUND,
		Status:    "sent",
		Media:     media,
	})
	if err != nil {
		logger.Error("error recording outbound message", zap.String("to", to), zap.Error(err))
	}
}
