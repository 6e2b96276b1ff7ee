package utils

import (
	"fmt"
	"strings"
)

// Ограничения входных данных
const (
	MaxMarketIDLength = 128
	MaxReasonLength   = 512
	MaxBatchSize      = 100
	MaxOrderSize      = 1_000_000
)

// ValidateMarketID проверяет идентификатор рынка.
// Допустимы буквы, цифры, дефис, подчеркивание и точка.
func ValidateMarketID(id string) error {
	if id == "" {
		return fmt.Errorf("market id cannot be empty")
	}
	if len(id) > MaxMarketIDLength {
		return fmt.Errorf("market id exceeds %d characters", MaxMarketIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return fmt.Errorf("market id contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateOrderSize проверяет размер ордера
func ValidateOrderSize(size float64) error {
	if size <= 0 {
		return fmt.Errorf("order size must be positive, got %v", size)
	}
	if size > MaxOrderSize {
		return fmt.Errorf("order size exceeds maximum %d", MaxOrderSize)
	}
	return nil
}

// ValidatePrice проверяет цену контракта.
// Цены prediction-контрактов лежат в (0, 1).
func ValidatePrice(price float64) error {
	if price <= 0 || price >= 1 {
		return fmt.Errorf("price must be in (0, 1), got %v", price)
	}
	return nil
}

// ValidateReason проверяет опциональную причину действия
func ValidateReason(reason string) error {
	if len(reason) > MaxReasonLength {
		return fmt.Errorf("reason exceeds %d characters", MaxReasonLength)
	}
	return nil
}

// ValidateIDList проверяет список идентификаторов для batch-операции
func ValidateIDList(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("id list cannot be empty")
	}
	if len(ids) > MaxBatchSize {
		return fmt.Errorf("id list exceeds maximum batch size %d", MaxBatchSize)
	}
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("id at index %d is empty", i)
		}
	}
	return nil
}
