package application

import (
	"context"

	"github.com/dmehra2102/payment-status-service/internal/payment/domain"
)

type CheckRepository interface {
	SaveWithOutbox(ctx context.Context, c domain.Check, eventType string, payload []byte, headers map[string]string, traceparent string) error
	Latest(ctx context.Context, transactionID string) (domain.Check, error)
}
