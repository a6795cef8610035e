package services

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/n8ngeorgia/orderdesk/internal/models"
)

// OrderStorage определяет интерфейс для работы с заявками.
type OrderStorage interface {
	Create(ctx context.Context, order *models.Order) error
	GetAll(ctx context.Context) ([]*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateOrderRequest) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) ([]models.AttachedFile, error)
}

// FileStore определяет интерфейс хранения загруженных файлов.
type FileStore interface {
	Save(reader io.Reader, originalName string) (*models.AttachedFile, error)
	Remove(filename string) error
}

// EmailSender отправляет письма по заявке. Возвращаемое значение -
// признак успеха; транспортные ошибки наружу не выбрасываются.
type EmailSender interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) bool
	SendOrderNotification(ctx context.Context, order *models.Order) bool
}

// ChatNotifier отправляет сводку по заявке в чат команды.
type ChatNotifier interface {
	SendOrderMessage(ctx context.Context, order *models.Order) bool
}
