package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/n8ngeorgia/orderdesk/internal/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridEmailSender отправляет письма по заявкам через SendGrid.
// Если ключ API не задан, отправитель создаётся отключённым: каждый
// вызов сразу возвращает false без сетевого обращения.
type SendGridEmailSender struct {
	client     *sendgrid.Client
	fromEmail  string
	adminEmail string
	logger     *log.Logger
	enabled    bool
}

// NewSendGridEmailSender создаёт отправителя писем. Отсутствие ключа
// фиксируется одним предупреждением на старте, а не при каждой отправке.
func NewSendGridEmailSender(apiKey, fromEmail, adminEmail string, logger *log.Logger) *SendGridEmailSender {
	if logger == nil {
		logger = log.Default()
	}

	s := &SendGridEmailSender{
		fromEmail:  fromEmail,
		adminEmail: adminEmail,
		logger:     logger,
		enabled:    apiKey != "",
	}

	if !s.enabled {
		logger.Println("WARNING: SENDGRID_API_KEY is not set, email notifications are disabled")
		return s
	}

	s.client = sendgrid.NewSendClient(apiKey)
	return s
}

// Enabled сообщает, настроен ли транспорт.
func (s *SendGridEmailSender) Enabled() bool {
	return s.enabled
}

// SendOrderConfirmation отправляет клиенту письмо-подтверждение
// на грузинском с публичным номером заявки.
func (s *SendGridEmailSender) SendOrderConfirmation(ctx context.Context, order *models.Order) bool {
	subject := fmt.Sprintf("შეკვეთის დადასტურება - %s", order.OrderID)
	html := buildConfirmationHTML(order)
	return s.send(ctx, order.Email, subject, html)
}

// SendOrderNotification отправляет администратору письмо со всеми
// полями заявки.
func (s *SendGridEmailSender) SendOrderNotification(ctx context.Context, order *models.Order) bool {
	subject := fmt.Sprintf("New Order Received - %s", order.OrderID)
	html := buildNotificationHTML(order)
	return s.send(ctx, s.adminEmail, subject, html)
}

// send выполняет одну отправку. Транспортные ошибки и отказы провайдера
// логируются и превращаются в false, наружу не выбрасываются.
func (s *SendGridEmailSender) send(ctx context.Context, to, subject, html string) bool {
	if !s.enabled {
		return false
	}

	message := mail.NewSingleEmail(
		mail.NewEmail("", s.fromEmail),
		subject,
		mail.NewEmail("", to),
		"",
		html,
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Printf("sendgrid error: %v", err)
		return false
	}
	if resp.StatusCode >= 300 {
		s.logger.Printf("sendgrid rejected message: status %d", resp.StatusCode)
		return false
	}

	return true
}

func buildConfirmationHTML(order *models.Order) string {
	return fmt.Sprintf(`
		<h2>მადლობა შეკვეთისთვის!</h2>
		<p>ძვირფასო %s,</p>
		<p>თქვენი შეკვეთა წარმატებით მიიღეს.</p>
		<p><strong>შეკვეთის ID:</strong> %s</p>
		<p>ჩვენ მალე დაგიკავშირდებით პროექტის დეტალების განსახილველად.</p>
		<br>
		<p>პატივისცემით,<br>n8n ავტომატიზაციის გუნდი</p>
	`, order.FullName, order.OrderID)
}

func buildNotificationHTML(order *models.Order) string {
	companyLine := ""
	if order.Company != "" {
		companyLine = fmt.Sprintf("<p><strong>Company:</strong> %s</p>", order.Company)
	}

	return fmt.Sprintf(`
		<h2>New Order Notification</h2>
		<p><strong>Order ID:</strong> %s</p>
		<p><strong>Customer:</strong> %s (%s)</p>
		<p><strong>Project:</strong> %s</p>
		<p><strong>Type:</strong> %s</p>
		%s
		<p><strong>Files attached:</strong> %d</p>
		<p><strong>Created:</strong> %s</p>
		<p>Please review the order details in the admin dashboard.</p>
	`,
		order.OrderID,
		order.FullName, order.Email,
		order.ProjectName,
		order.AutomationType,
		companyLine,
		len(order.AttachedFiles),
		order.CreatedAt.Format("2006-01-02 15:04:05 MST"),
	)
}
