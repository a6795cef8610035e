//go:build integration
// +build integration

package storage

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/n8ngeorgia/orderdesk/internal/models"
)

func getTestDBPool(t *testing.T) *pgxpool.Pool {
	dbURI := os.Getenv("DATABASE_URI")
	if dbURI == "" {
		t.Skip("DATABASE_URI not set, skipping integration tests")
	}

	pool, err := pgxpool.New(context.Background(), dbURI)
	if err != nil {
		t.Fatalf("Unable to connect to database: %v", err)
	}

	return pool
}

func testOrderFields() *models.Order {
	return &models.Order{
		FullName:       "ანა ბერიძე",
		Email:          "ana@example.com",
		Company:        "Acme LLC",
		ProjectName:    "CRM Sync",
		AutomationType: "crm",
		Description:    "sync contacts nightly",
	}
}

func TestPostgresOrderStorage_CreateAndGet(t *testing.T) {
	pool := getTestDBPool(t)
	defer pool.Close()

	storage := NewPostgresOrderStorage(pool)
	ctx := context.Background()

	order := testOrderFields()
	order.AttachedFiles = []models.AttachedFile{
		{OriginalName: "leads.csv", Filename: uuid.New().String() + ".csv", Path: "uploads/a.csv", Size: 12, MimeType: "text/csv"},
		{OriginalName: "spec.pdf", Filename: uuid.New().String() + ".pdf", Path: "uploads/b.pdf", Size: 34, MimeType: "application/pdf"},
	}

	if err := storage.Create(ctx, order); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if order.ID == uuid.Nil {
		t.Error("internal id not assigned")
	}
	if order.OrderID == "" {
		t.Error("public order id not assigned")
	}
	if order.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}

	// Round-trip по публичному номеру
	retrieved, err := storage.GetByOrderID(ctx, order.OrderID)
	if err != nil {
		t.Fatalf("GetByOrderID() error = %v", err)
	}
	if retrieved.FullName != order.FullName || retrieved.Email != order.Email || retrieved.ProjectName != order.ProjectName {
		t.Errorf("round-trip mismatch: got %+v", retrieved)
	}
	if len(retrieved.AttachedFiles) != 2 {
		t.Fatalf("attached files = %d, want 2", len(retrieved.AttachedFiles))
	}
	if retrieved.AttachedFiles[0].OriginalName != "leads.csv" {
		t.Errorf("file order not preserved: first = %q", retrieved.AttachedFiles[0].OriginalName)
	}

	// Повторное чтение возвращает те же данные
	again, err := storage.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if again.OrderID != retrieved.OrderID || again.CreatedAt != retrieved.CreatedAt {
		t.Errorf("repeated read mismatch: %+v vs %+v", again, retrieved)
	}
}

func TestPostgresOrderStorage_ConcurrentCreateUniqueOrderIDs(t *testing.T) {
	pool := getTestDBPool(t)
	defer pool.Close()

	storage := NewPostgresOrderStorage(pool)
	ctx := context.Background()

	const workers = 10

	var (
		mu   sync.Mutex
		seen = make(map[string]bool, workers)
		wg   sync.WaitGroup
	)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			order := testOrderFields()
			if err := storage.Create(ctx, order); err != nil {
				t.Errorf("Create() error = %v", err)
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if seen[order.OrderID] {
				t.Errorf("duplicate public order id: %s", order.OrderID)
			}
			seen[order.OrderID] = true
		}()
	}
	wg.Wait()
}

func TestPostgresOrderStorage_Update(t *testing.T) {
	pool := getTestDBPool(t)
	defer pool.Close()

	storage := NewPostgresOrderStorage(pool)
	ctx := context.Background()

	order := testOrderFields()
	if err := storage.Create(ctx, order); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newName := "Renamed Project"
	updated, err := storage.Update(ctx, order.ID, &models.UpdateOrderRequest{ProjectName: &newName})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.ProjectName != newName {
		t.Errorf("ProjectName = %q, want %q", updated.ProjectName, newName)
	}
	// Непереданные поля не изменяются
	if updated.FullName != order.FullName {
		t.Errorf("FullName changed: %q", updated.FullName)
	}
	// Публичный номер и дата создания неизменны
	if updated.OrderID != order.OrderID {
		t.Errorf("OrderID changed: %q", updated.OrderID)
	}
	if !updated.CreatedAt.Equal(order.CreatedAt) {
		t.Errorf("CreatedAt changed: %v", updated.CreatedAt)
	}

	_, err = storage.Update(ctx, uuid.New(), &models.UpdateOrderRequest{ProjectName: &newName})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound for missing id, got %v", err)
	}
}

func TestPostgresOrderStorage_Delete(t *testing.T) {
	pool := getTestDBPool(t)
	defer pool.Close()

	storage := NewPostgresOrderStorage(pool)
	ctx := context.Background()

	order := testOrderFields()
	order.AttachedFiles = []models.AttachedFile{
		{OriginalName: "data.json", Filename: uuid.New().String() + ".json", Path: "uploads/c.json", Size: 7, MimeType: "application/json"},
	}
	if err := storage.Create(ctx, order); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	files, err := storage.Delete(ctx, order.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(files) != 1 || files[0].OriginalName != "data.json" {
		t.Errorf("returned files = %+v", files)
	}

	if _, err := storage.GetByID(ctx, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("order still readable after delete: %v", err)
	}

	if _, err := storage.Delete(ctx, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound on second delete, got %v", err)
	}
}
