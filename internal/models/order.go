package models

import (
	"time"

	"github.com/google/uuid"
)

// AttachedFile описывает файл, загруженный вместе с заявкой.
// Запись неизменяема после создания заявки.
type AttachedFile struct {
	OriginalName string `json:"originalName" db:"original_name"`
	Filename     string `json:"filename" db:"filename"`
	Path         string `json:"path" db:"path"`
	Size         int64  `json:"size" db:"size"`
	MimeType     string `json:"mimetype" db:"mime_type"`
}

// Order представляет заявку клиента на проект автоматизации.
type Order struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	OrderID        string         `json:"orderId" db:"order_id"`
	FullName       string         `json:"fullName" db:"full_name"`
	Email          string         `json:"email" db:"email"`
	Company        string         `json:"company,omitempty" db:"company"`
	ProjectName    string         `json:"projectName" db:"project_name"`
	AutomationType string         `json:"automationType" db:"automation_type"`
	Description    string         `json:"description,omitempty" db:"description"`
	AttachedFiles  []AttachedFile `json:"attachedFiles"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

// CreateOrderRequest - поля формы создания заявки.
type CreateOrderRequest struct {
	FullName       string `json:"fullName" form:"fullName"`
	Email          string `json:"email" form:"email"`
	Company        string `json:"company" form:"company"`
	ProjectName    string `json:"projectName" form:"projectName"`
	AutomationType string `json:"automationType" form:"automationType"`
	Description    string `json:"description" form:"description"`
}

// UpdateOrderRequest - частичное обновление заявки.
// nil означает «поле не передано», поэтому пустая строка и отсутствие
// поля различимы.
type UpdateOrderRequest struct {
	FullName       *string `json:"fullName,omitempty"`
	Email          *string `json:"email,omitempty"`
	Company        *string `json:"company,omitempty"`
	ProjectName    *string `json:"projectName,omitempty"`
	AutomationType *string `json:"automationType,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// CreateOrderResponse - ответ на успешное создание заявки.
type CreateOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}
