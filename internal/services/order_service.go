package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/n8ngeorgia/orderdesk/internal/models"
)

const (
	// maxAttachedFiles - максимум файлов в одной заявке.
	maxAttachedFiles = 5
	// maxAttachmentSize - потолок размера одного файла, 10 МБ.
	maxAttachmentSize = 10 << 20
)

// allowedExtensions - допустимые расширения вложений.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".json": true,
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Upload описывает один загружаемый файл до проверки политики вложений.
type Upload struct {
	Name     string
	Size     int64
	MimeType string
	Reader   io.Reader
}

// OrderService определяет интерфейс работы с заявками.
type OrderService interface {
	Create(ctx context.Context, req *models.CreateOrderRequest, uploads []Upload) (*models.Order, error)
	GetAll(ctx context.Context) ([]*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, body []byte) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderServiceImpl реализует OrderService.
type OrderServiceImpl struct {
	orderStorage OrderStorage
	fileStore    FileStore
	email        EmailSender
	chat         ChatNotifier
	logger       *log.Logger
}

// NewOrderService создаёт новый сервис заявок.
func NewOrderService(orderStorage OrderStorage, fileStore FileStore, email EmailSender, chat ChatNotifier, logger *log.Logger) *OrderServiceImpl {
	if logger == nil {
		logger = log.Default()
	}
	return &OrderServiceImpl{
		orderStorage: orderStorage,
		fileStore:    fileStore,
		email:        email,
		chat:         chat,
		logger:       logger,
	}
}

// Create проводит заявку через весь конвейер: валидация, политика
// вложений, сохранение файлов, запись в хранилище, рассылка уведомлений.
// Результат для клиента определяется только записью в хранилище:
// неудача любого канала уведомлений не влияет на возвращаемую ошибку.
func (s *OrderServiceImpl) Create(ctx context.Context, req *models.CreateOrderRequest, uploads []Upload) (*models.Order, error) {
	if err := ValidateCreate(req); err != nil {
		return nil, err
	}

	// Политика вложений проверяется до записи чего-либо на диск
	if err := checkAttachmentPolicy(uploads); err != nil {
		return nil, err
	}

	attached := []models.AttachedFile{}
	for _, up := range uploads {
		file, err := s.fileStore.Save(up.Reader, up.Name)
		if err != nil {
			s.removeFiles(attached)
			return nil, fmt.Errorf("save upload %s: %w", up.Name, err)
		}
		file.MimeType = up.MimeType
		attached = append(attached, *file)
	}

	order := &models.Order{
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.TrimSpace(req.Email),
		Company:        strings.TrimSpace(req.Company),
		ProjectName:    strings.TrimSpace(req.ProjectName),
		AutomationType: strings.TrimSpace(req.AutomationType),
		Description:    strings.TrimSpace(req.Description),
		AttachedFiles:  attached,
	}

	if err := s.orderStorage.Create(ctx, order); err != nil {
		s.removeFiles(attached)
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.dispatchNotifications(ctx, order)

	return order, nil
}

// GetAll возвращает все заявки.
func (s *OrderServiceImpl) GetAll(ctx context.Context) ([]*models.Order, error) {
	orders, err := s.orderStorage.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

// GetByID возвращает заявку по внутреннему идентификатору.
func (s *OrderServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orderStorage.GetByID(ctx, id)
}

// GetByOrderID возвращает заявку по публичному номеру.
func (s *OrderServiceImpl) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orderStorage.GetByOrderID(ctx, orderID)
}

// Update применяет частичное обновление к заявке.
func (s *OrderServiceImpl) Update(ctx context.Context, id uuid.UUID, body []byte) (*models.Order, error) {
	req, err := ValidateUpdate(body)
	if err != nil {
		return nil, err
	}
	return s.orderStorage.Update(ctx, id, req)
}

// Delete удаляет заявку и каскадно убирает её вложения с диска.
// Ошибки удаления файлов только логируются: запись уже удалена.
func (s *OrderServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	files, err := s.orderStorage.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeFiles(files)
	return nil
}

// dispatchNotifications рассылает уведомления по трём независимым
// каналам: подтверждение клиенту, письмо администратору и сообщение
// в чат. Каналы запускаются параллельно, точка соединения нужна
// только для логирования: неудачи фиксируются как значения.
func (s *OrderServiceImpl) dispatchNotifications(ctx context.Context, order *models.Order) {
	var (
		wg                          sync.WaitGroup
		confirmOK, notifyOK, chatOK bool
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		confirmOK = s.email.SendOrderConfirmation(ctx, order)
	}()
	go func() {
		defer wg.Done()
		notifyOK = s.email.SendOrderNotification(ctx, order)
	}()
	go func() {
		defer wg.Done()
		chatOK = s.chat.SendOrderMessage(ctx, order)
	}()
	wg.Wait()

	if !confirmOK {
		s.logger.Printf("order %s: confirmation email not delivered", order.OrderID)
	}
	if !notifyOK {
		s.logger.Printf("order %s: staff notification email not delivered", order.OrderID)
	}
	if !chatOK {
		s.logger.Printf("order %s: chat notification not delivered", order.OrderID)
	}
}

// removeFiles убирает файлы с диска, ошибки только логируются.
func (s *OrderServiceImpl) removeFiles(files []models.AttachedFile) {
	for _, file := range files {
		if err := s.fileStore.Remove(file.Filename); err != nil {
			s.logger.Printf("remove file %s: %v", file.Filename, err)
		}
	}
}

// checkAttachmentPolicy проверяет количество, расширения и размеры
// загружаемых файлов до какой-либо записи.
func checkAttachmentPolicy(uploads []Upload) error {
	if len(uploads) > maxAttachedFiles {
		return fmt.Errorf("%w: at most %d files per order", ErrAttachment, maxAttachedFiles)
	}

	for _, up := range uploads {
		ext := strings.ToLower(filepath.Ext(up.Name))
		if !allowedExtensions[ext] {
			return fmt.Errorf("%w: file type %q is not allowed", ErrAttachment, ext)
		}
		if up.Size > maxAttachmentSize {
			return fmt.Errorf("%w: file %s exceeds the 10MB limit", ErrAttachment, up.Name)
		}
	}

	return nil
}
