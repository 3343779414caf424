package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dmehra2102/payment-status-service/internal/payment/domain"
)

var (
	ErrMissingTransactionID = errors.New("transaction id is required")
	ErrCheckNotFound        = errors.New("completion check not found")
)

type Service struct {
	repo    CheckRepository
	checker domain.StatusChecker
	now     func() time.Time
	newID   func() string
	meter   metric.MeterProvider
	checks  metric.Int64Counter
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithMeterProvider overrides the global meter provider used for the check counter.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.meter = mp }
}

func NewService(repo CheckRepository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		checker: domain.NewStatusChecker(),
		now:     time.Now,
		newID:   uuid.NewString,
		meter:   otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	counter, err := s.meter.Meter("payment-service").Int64Counter(
		"payment.completion.checks",
		metric.WithDescription("Recorded transaction completion checks"),
	)
	if err == nil {
		s.checks = counter
	}
	return s
}

// IsCompleted reports whether the transaction is completed. It never touches storage.
func (s *Service) IsCompleted(completed bool) bool {
	return s.checker.IsCompleted(completed)
}

// RecordCheck stores a completion check for transactionID together with the
// matching outbox event.
func (s *Service) RecordCheck(ctx context.Context, transactionID string, completed bool, headers map[string]string, traceparent string) (domain.Check, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return domain.Check{}, ErrMissingTransactionID
	}

	c := domain.NewCheck(s.newID(), transactionID, s.checker.IsCompleted(completed), s.now())

	eventType, event := domain.EventFor(c)
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.Check{}, fmt.Errorf("marshal %s: %w", eventType, err)
	}

	if err := s.repo.SaveWithOutbox(ctx, c, eventType, payload, headers, traceparent); err != nil {
		return domain.Check{}, fmt.Errorf("record check: %w", err)
	}

	if s.checks != nil {
		s.checks.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(c.Status))))
	}
	return c, nil
}

func (s *Service) LatestCheck(ctx context.Context, transactionID string) (domain.Check, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return domain.Check{}, ErrMissingTransactionID
	}
	c, err := s.repo.Latest(ctx, transactionID)
	if err != nil {
		if errors.Is(err, ErrCheckNotFound) {
			return domain.Check{}, err
		}
		return domain.Check{}, fmt.Errorf("latest check: %w", err)
	}
	return c, nil
}
