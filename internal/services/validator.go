package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/n8ngeorgia/orderdesk/internal/models"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrAttachment = errors.New("attachment rejected")
)

// mutableOrderFields - поля, допустимые в теле частичного обновления.
var mutableOrderFields = map[string]bool{
	"fullName":       true,
	"email":          true,
	"company":        true,
	"projectName":    true,
	"automationType": true,
	"description":    true,
}

// protectedOrderFields - поля, которые нельзя менять через обновление.
var protectedOrderFields = map[string]bool{
	"id":            true,
	"orderId":       true,
	"createdAt":     true,
	"updatedAt":     true,
	"attachedFiles": true,
}

// ValidateCreate проверяет поля формы создания заявки.
// Сообщения различают отсутствующее поле и некорректное значение.
func ValidateCreate(req *models.CreateOrderRequest) error {
	required := []struct {
		name  string
		value string
	}{
		{"fullName", req.FullName},
		{"email", req.Email},
		{"projectName", req.ProjectName},
		{"automationType", req.AutomationType},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: missing required field %s", ErrValidation, field.name)
		}
	}

	if !validEmail(strings.TrimSpace(req.Email)) {
		return fmt.Errorf("%w: malformed email %q", ErrValidation, req.Email)
	}

	return nil
}

// ValidateUpdate разбирает тело частичного обновления. Сначала тело
// читается в сырую карту, чтобы отклонить защищённые и неизвестные
// поля до какого-либо изменения состояния.
func ValidateUpdate(body []byte) (*models.UpdateOrderRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON body", ErrValidation)
	}

	for key := range raw {
		if mutableOrderFields[key] {
			continue
		}
		if protectedOrderFields[key] {
			return nil, fmt.Errorf("%w: field %s cannot be updated", ErrValidation, key)
		}
		return nil, fmt.Errorf("%w: unknown field %s", ErrValidation, key)
	}

	var req models.UpdateOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: malformed field value", ErrValidation)
	}

	// Обязательные поля нельзя обнулить через обновление
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		return nil, fmt.Errorf("%w: field fullName cannot be empty", ErrValidation)
	}
	if req.ProjectName != nil && strings.TrimSpace(*req.ProjectName) == "" {
		return nil, fmt.Errorf("%w: field projectName cannot be empty", ErrValidation)
	}
	if req.AutomationType != nil && strings.TrimSpace(*req.AutomationType) == "" {
		return nil, fmt.Errorf("%w: field automationType cannot be empty", ErrValidation)
	}
	if req.Email != nil && !validEmail(strings.TrimSpace(*req.Email)) {
		return nil, fmt.Errorf("%w: malformed email %q", ErrValidation, *req.Email)
	}

	return &req, nil
}

// validEmail проверяет синтаксис адреса. Адрес должен быть «голым»,
// без отображаемого имени и угловых скобок.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
