package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/n8ngeorgia/orderdesk/internal/models"
	"github.com/slack-go/slack"
)

// slackTimeout ограничивает время одного обращения к webhook.
const slackTimeout = 10 * time.Second

// SlackNotifier публикует сводки по заявкам в канал команды через
// incoming webhook. Без настроенного URL уведомитель отключён:
// каждый вызов сразу возвращает false без сетевого обращения.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *log.Logger
	enabled    bool
}

// NewSlackNotifier создаёт уведомителя. Отсутствие URL фиксируется
// одним предупреждением на старте.
func NewSlackNotifier(webhookURL string, logger *log.Logger) *SlackNotifier {
	if logger == nil {
		logger = log.Default()
	}

	n := &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: slackTimeout},
		logger:     logger,
		enabled:    webhookURL != "",
	}

	if !n.enabled {
		logger.Println("WARNING: SLACK_WEBHOOK_URL is not set, chat notifications are disabled")
	}

	return n
}

// Enabled сообщает, настроен ли транспорт.
func (n *SlackNotifier) Enabled() bool {
	return n.enabled
}

// SendOrderMessage отправляет одно структурированное сообщение со
// сводкой заявки. Ошибки транспорта логируются и превращаются в false.
func (n *SlackNotifier) SendOrderMessage(ctx context.Context, order *models.Order) bool {
	if !n.enabled {
		return false
	}

	fields := []slack.AttachmentField{
		{Title: "Order ID", Value: order.OrderID, Short: true},
		{Title: "Customer", Value: fmt.Sprintf("%s (%s)", order.FullName, order.Email), Short: true},
		{Title: "Project", Value: order.ProjectName, Short: true},
		{Title: "Type", Value: order.AutomationType, Short: true},
	}
	if order.Company != "" {
		fields = append(fields, slack.AttachmentField{Title: "Company", Value: order.Company, Short: true})
	}
	fields = append(fields, slack.AttachmentField{
		Title: "Files attached",
		Value: strconv.Itoa(len(order.AttachedFiles)),
		Short: true,
	})

	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("New automation order received: %s", order.OrderID),
		Attachments: []slack.Attachment{
			{
				Color:  "good",
				Fields: fields,
			},
		},
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		n.logger.Printf("slack webhook error: %v", err)
		return false
	}

	return true
}
