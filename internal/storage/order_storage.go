package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/n8ngeorgia/orderdesk/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// maxOrderIDAttempts ограничивает число попыток сгенерировать
// уникальный публичный номер заявки при коллизии.
const maxOrderIDAttempts = 5

// OrderStorage определяет интерфейс для работы с заявками.
type OrderStorage interface {
	Create(ctx context.Context, order *models.Order) error
	GetAll(ctx context.Context) ([]*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateOrderRequest) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) ([]models.AttachedFile, error)
}

// PostgresOrderStorage реализует OrderStorage для PostgreSQL.
type PostgresOrderStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool}
}

// Create создаёт заявку вместе с вложениями в одной транзакции.
// Публичный номер заявки генерируется здесь; уникальность гарантирует
// уникальный индекс, при коллизии транзакция повторяется с новым номером.
func (s *PostgresOrderStorage) Create(ctx context.Context, order *models.Order) error {
	for attempt := 0; attempt < maxOrderIDAttempts; attempt++ {
		order.OrderID = GenerateOrderID()

		err := s.createTx(ctx, order)
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			continue
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	return fmt.Errorf("failed to generate unique order id after %d attempts", maxOrderIDAttempts)
}

func (s *PostgresOrderStorage) createTx(ctx context.Context, order *models.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (order_id, full_name, email, company, project_name, automation_type, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		order.OrderID,
		order.FullName,
		order.Email,
		order.Company,
		order.ProjectName,
		order.AutomationType,
		order.Description,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}

	for i, file := range order.AttachedFiles {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_files (order_ref, position, original_name, filename, path, size, mime_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, order.ID, i, file.OriginalName, file.Filename, file.Path, file.Size, file.MimeType)
		if err != nil {
			return fmt.Errorf("insert order file: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetAll возвращает все заявки в порядке создания.
func (s *PostgresOrderStorage) GetAll(ctx context.Context) ([]*models.Order, error) {
	query := `
		SELECT id, order_id, full_name, email, company, project_name, automation_type, description, created_at, updated_at
		FROM orders
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	if err := s.loadFiles(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetByID возвращает заявку по внутреннему идентификатору.
func (s *PostgresOrderStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `
		SELECT id, order_id, full_name, email, company, project_name, automation_type, description, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := s.loadFiles(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// GetByOrderID возвращает заявку по публичному номеру.
func (s *PostgresOrderStorage) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `
		SELECT id, order_id, full_name, email, company, project_name, automation_type, description, created_at, updated_at
		FROM orders
		WHERE order_id = $1
	`

	order, err := scanOrder(s.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		return nil, err
	}

	if err := s.loadFiles(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// Update частично обновляет заявку: непереданные поля сохраняют старые
// значения. Публичный номер, дата создания и вложения не изменяются.
func (s *PostgresOrderStorage) Update(ctx context.Context, id uuid.UUID, req *models.UpdateOrderRequest) (*models.Order, error) {
	query := `
		UPDATE orders
		SET full_name       = COALESCE($1, full_name),
		    email           = COALESCE($2, email),
		    company         = COALESCE($3, company),
		    project_name    = COALESCE($4, project_name),
		    automation_type = COALESCE($5, automation_type),
		    description     = COALESCE($6, description),
		    updated_at      = NOW()
		WHERE id = $7
		RETURNING id, order_id, full_name, email, company, project_name, automation_type, description, created_at, updated_at
	`

	order, err := scanOrder(s.pool.QueryRow(ctx, query,
		req.FullName,
		req.Email,
		req.Company,
		req.ProjectName,
		req.AutomationType,
		req.Description,
		id,
	))
	if err != nil {
		return nil, err
	}

	if err := s.loadFiles(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// Delete удаляет заявку и возвращает метаданные её вложений, чтобы
// вызывающий мог убрать файлы с диска. Записи вложений удаляются каскадно.
func (s *PostgresOrderStorage) Delete(ctx context.Context, id uuid.UUID) ([]models.AttachedFile, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT original_name, filename, path, size, mime_type
		FROM order_files
		WHERE order_ref = $1
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order files: %w", err)
	}

	files, err := collectFiles(rows)
	if err != nil {
		return nil, err
	}

	result, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrOrderNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return files, nil
}

// loadFiles догружает вложения для набора заявок одним запросом.
func (s *PostgresOrderStorage) loadFiles(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*models.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		o.AttachedFiles = []models.AttachedFile{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT order_ref, original_name, filename, path, size, mime_type
		FROM order_files
		WHERE order_ref = ANY($1)
		ORDER BY position ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query order files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ref  uuid.UUID
			file models.AttachedFile
		)
		if err := rows.Scan(&ref, &file.OriginalName, &file.Filename, &file.Path, &file.Size, &file.MimeType); err != nil {
			return fmt.Errorf("failed to scan order file: %w", err)
		}
		if order, ok := byID[ref]; ok {
			order.AttachedFiles = append(order.AttachedFiles, file)
		}
	}

	if rows.Err() != nil {
		return fmt.Errorf("rows error: %w", rows.Err())
	}

	return nil
}

// collectFiles читает вложения из результата запроса.
func collectFiles(rows pgx.Rows) ([]models.AttachedFile, error) {
	defer rows.Close()

	files := []models.AttachedFile{}
	for rows.Next() {
		var file models.AttachedFile
		if err := rows.Scan(&file.OriginalName, &file.Filename, &file.Path, &file.Size, &file.MimeType); err != nil {
			return nil, fmt.Errorf("failed to scan order file: %w", err)
		}
		files = append(files, file)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return files, nil
}

// scanOrder помогает читать заявку из строки результата.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order

	err := row.Scan(
		&order.ID,
		&order.OrderID,
		&order.FullName,
		&order.Email,
		&order.Company,
		&order.ProjectName,
		&order.AutomationType,
		&order.Description,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	return &order, nil
}

// GenerateOrderID генерирует публичный номер заявки вида ORD-3FA85F64.
// Источник энтропии — случайный UUID, поэтому номера не пересекаются и
// при конкурентных созданиях; окончательную уникальность закрепляет индекс.
func GenerateOrderID() string {
	id := uuid.New()
	return "ORD-" + strings.ToUpper(hex.EncodeToString(id[:4]))
}
