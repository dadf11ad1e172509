package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sardorbek/atmos-paylink/internal/domain"
	"github.com/sardorbek/atmos-paylink/internal/dto"
	"github.com/sardorbek/atmos-paylink/internal/gateway"
	"github.com/sardorbek/atmos-paylink/internal/metrics"
	"github.com/sardorbek/atmos-paylink/internal/notifier"
	"github.com/sardorbek/atmos-paylink/internal/repository"
	"github.com/sardorbek/atmos-paylink/pkg/kafka"
	"github.com/sardorbek/atmos-paylink/pkg/logger"
)

// paylinkServiceImpl implements PaylinkService
type paylinkServiceImpl struct {
	repo     repository.TransactionRepository
	gateway  gateway.Client
	notifier notifier.OrderNotifier
	producer *kafka.Producer
	config   *PaylinkServiceConfig
}

// NewPaylinkService creates a new PaylinkService. producer may be nil when
// event publishing is not configured.
func NewPaylinkService(
	repo repository.TransactionRepository,
	gw gateway.Client,
	orderNotifier notifier.OrderNotifier,
	producer *kafka.Producer,
	config *PaylinkServiceConfig,
) PaylinkService {
	if orderNotifier == nil {
		orderNotifier = notifier.NewNoopOrderNotifier()
	}

	return &paylinkServiceImpl{
		repo:     repo,
		gateway:  gw,
		notifier: orderNotifier,
		producer: producer,
		config:   config,
	}
}

// CreatePaymentLink registers the transaction with the gateway, then stores
// the local record. The store's unique constraint on account is the final
// arbiter for concurrent creation attempts.
func (s *paylinkServiceImpl) CreatePaymentLink(ctx context.Context, req *CreatePaylinkRequest) (*CreatePaylinkResult, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if req.Account == "" {
		return nil, domain.ErrAccountRequired
	}
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	start := time.Now()
	link, err := s.gateway.CreatePaymentLink(ctx, req.Amount, req.Account)
	metrics.RecordGatewayCall(ctx, "pay_create", time.Since(start).Seconds())
	if err != nil {
		metrics.RecordLinkCreateFailed(ctx, "gateway")
		return nil, err
	}

	tx, err := domain.NewTransaction(req.Account, req.Amount, link.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		metrics.RecordLinkCreateFailed(ctx, "store")
		return nil, err
	}

	amount, _ := req.Amount.Float64()
	metrics.RecordLinkCreated(ctx, req.Account, amount)

	return &CreatePaylinkResult{
		Transaction: tx,
		PaymentURL:  link.PaymentURL,
	}, nil
}

// HandleWebhook verifies the signature, correlates the notification by
// invoice and applies the paid transition.
//
// The webhook's transaction_id is not used for lookup: the gateway may
// assign a different ID at payment time than at creation time, so the only
// reliable join key is the invoice (our account). The webhook ID overwrites
// the stored one on the first successful delivery.
func (s *paylinkServiceImpl) HandleWebhook(ctx context.Context, payload *dto.WebhookNotification) (*domain.Transaction, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload is required")
	}

	fields := gateway.SignatureFields{
		StoreID:       payload.StoreID,
		TransactionID: payload.TransactionIDString(),
		Invoice:       payload.Invoice,
		Amount:        payload.AmountString(),
	}
	if !gateway.VerifySignature(fields, s.config.APIKey, payload.Sign) {
		return nil, domain.ErrInvalidSignature
	}

	tx, transitioned, err := s.repo.MarkPaid(ctx, payload.Invoice, payload.TransactionID)
	if err != nil {
		return nil, err
	}

	// Duplicate delivery: the record is already paid, nothing left to do
	if !transitioned {
		logger.Get().Info("duplicate webhook delivery ignored",
			zap.String("invoice", payload.Invoice),
			zap.Int64("transaction_id", payload.TransactionID),
		)
		return tx, nil
	}

	s.notifyOrderPaid(ctx, payload.Invoice)
	s.publishPaidEvent(ctx, tx, payload)

	return tx, nil
}

// GetTransaction retrieves a transaction by account
func (s *paylinkServiceImpl) GetTransaction(ctx context.Context, account string) (*domain.Transaction, error) {
	return s.repo.GetByAccount(ctx, account)
}

// notifyOrderPaid tells the order subsystem the order is paid. Failures are
// logged and swallowed: the webhook outcome never depends on this call.
func (s *paylinkServiceImpl) notifyOrderPaid(ctx context.Context, account string) {
	if err := s.notifier.SetOrderPaid(ctx, account); err != nil {
		logger.Get().Warn("order notification failed",
			zap.String("account", account),
			zap.Error(err),
		)
	}
}

// publishPaidEvent publishes a payment-paid event to Kafka, best-effort
func (s *paylinkServiceImpl) publishPaidEvent(ctx context.Context, tx *domain.Transaction, payload *dto.WebhookNotification) {
	if s.producer == nil {
		return
	}

	event := &dto.PaymentPaidEvent{
		EventType:            "payment_paid",
		TransactionID:        tx.LocalID,
		GatewayTransactionID: payload.TransactionID,
		Account:              tx.Account,
		AmountTiyin:          payload.Amount,
		Timestamp:            time.Now().UTC(),
	}

	if err := s.producer.ProduceJSON(ctx, dto.TopicPaymentPaid, event.Key(), event, nil); err != nil {
		logger.Get().Warn("failed to publish payment-paid event",
			zap.String("account", tx.Account),
			zap.Error(err),
		)
	}
}
