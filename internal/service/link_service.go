package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lumapay/paylink/internal/config"
	"github.com/lumapay/paylink/internal/domain"
	"github.com/lumapay/paylink/internal/gateway"
	"github.com/lumapay/paylink/internal/pricing"
	"github.com/lumapay/paylink/internal/repository"
	customError "github.com/lumapay/paylink/pkg/errors"
	"github.com/lumapay/paylink/pkg/utils"
)

// Poll statuses reported to callers
const (
	PollStatusPaid           = "paid"
	PollStatusPending        = "pending"
	PollStatusVoided         = "voided"
	PollStatusTechnicalError = "technical_error"
)

const invoiceCacheTTL = 24 * time.Hour

// LinkService owns the payment link lifecycle: pricing previews,
// authoritative link creation against the gateway, status polling and
// ticket generation.
type LinkService struct {
	LinkRepo   repository.LinkRepository
	ClientRepo repository.ClientRepository
	FeeRepo    repository.FeeConfigRepository
	Gateway    gateway.API
	redis      *redis.Client
	config     *config.Config
}

func NewLinkService(
	linkRepo repository.LinkRepository,
	clientRepo repository.ClientRepository,
	feeRepo repository.FeeConfigRepository,
	gw gateway.API,
	redisClient *redis.Client,
	cfg *config.Config,
) *LinkService {
	return &LinkService{
		LinkRepo:   linkRepo,
		ClientRepo: clientRepo,
		FeeRepo:    feeRepo,
		Gateway:    gw,
		redis:      redisClient,
		config:     cfg,
	}
}

// price re-reads the current fee configuration and resolves the plan, then
// runs the forward pricing computation. Configuration is never cached
// across requests; each pricing operation sees the state current at call
// time.
func (s *LinkService) price(ctx context.Context, req *domain.PreviewRequest) (*pricing.Quote, int, error) {
	installments := req.Installments
	if installments < 1 || req.CardType == domain.CardTypeDebit {
		installments = 1
	}

	cfg, err := s.FeeRepo.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, customError.WrapConfigInvalid("no fee configuration available")
		}
		return nil, 0, customError.WrapDatabaseError(err)
	}

	var plan *domain.InstallmentPlan
	if req.CardType == domain.CardTypeCredit && installments > 1 {
		plan, err = s.FeeRepo.GetActivePlan(ctx, installments)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, customError.WrapPlanNotFound(installments)
		}
		if err != nil {
			return nil, 0, customError.WrapDatabaseError(err)
		}
	}

	q, err := pricing.Forward(req.NetAmount, req.CardType, installments, cfg, plan)
	if err != nil {
		return nil, 0, err
	}
	return q, installments, nil
}

// Preview prices a prospective link without persisting anything
func (s *LinkService) Preview(ctx context.Context, req *domain.PreviewRequest) (*domain.PreviewResponse, error) {
	q, _, err := s.price(ctx, req)
	if err != nil {
		return nil, err
	}
	return &domain.PreviewResponse{
		GrossAmount:  q.GrossAmount,
		DeductionPct: q.DeductionPct,
		DeductionAmt: q.DeductionAmt,
		NetAmount:    q.ReceiverAmt,
	}, nil
}

// CreateLink prices the order server-side, submits it to the gateway and
// persists the resulting link. Any gateway failure leaves no record behind.
func (s *LinkService) CreateLink(ctx context.Context, clientID uuid.UUID, req *domain.CreateLinkRequest) (*domain.PaymentLink, error) {
	client, err := s.ClientRepo.GetByID(ctx, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapClientNotFound(clientID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !client.CanLogin() {
		return nil, customError.NewValidationError("Account is not allowed to create payment links.")
	}

	q, installments, err := s.price(ctx, &domain.PreviewRequest{
		NetAmount:    req.NetAmount,
		Installments: req.Installments,
		CardType:     req.CardType,
	})
	if err != nil {
		return nil, err
	}

	orderID := utils.NewOrderID()
	grossMinor := utils.ToMinorUnits(q.GrossAmount)

	orderReq := &gateway.CreateOrderRequest{
		OrderID:     orderID,
		AmountMinor: grossMinor,
		Currency:    s.config.Gateway.Currency,
		Channel:     strings.ToUpper(req.CardType),
	}
	if installments > 1 {
		if s.config.Gateway.Contract == "schedule" {
			orderReq.Schedule = gateway.BuildSchedule(grossMinor, installments, time.Now())
		} else {
			orderReq.Installments = installments
		}
	}

	order, err := s.Gateway.CreateOrder(ctx, orderReq)
	if err != nil {
		return nil, err
	}

	link := &domain.PaymentLink{
		ID:           uuid.New(),
		ClientID:     client.ID,
		NetAmount:    q.NetAmount,
		GrossAmount:  q.GrossAmount,
		CardType:     req.CardType,
		Installments: installments,
		SettledInst:  1,
		Description:  strings.TrimSpace(req.Description),
		OrderID:      orderID,
		PaymentURL:   order.PaymentURL,
		DeductionPct: q.DeductionPct,
		DeductionAmt: q.DeductionAmt,
		ReceiverAmt:  q.ReceiverAmt,
	}

	if err := s.LinkRepo.Create(ctx, link); err != nil {
		var be *customError.BusinessError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return link, nil
}

// PollStatus queries the gateway for a link's settlement state. Terminal
// states are idempotent: a link already paid locally returns the cached
// result without an external call, and a paid link is never downgraded.
func (s *LinkService) PollStatus(ctx context.Context, clientID, linkID uuid.UUID) (*domain.PollResult, error) {
	link, err := s.getOwnedLink(ctx, clientID, linkID)
	if err != nil {
		return nil, err
	}
	return s.poll(ctx, link)
}

func (s *LinkService) poll(ctx context.Context, link *domain.PaymentLink) (*domain.PollResult, error) {
	if link.Paid {
		return &domain.PollResult{
			Status:       PollStatusPaid,
			Paid:         true,
			Installments: link.SettledInst,
		}, nil
	}

	resp, err := s.Gateway.QueryOrder(ctx, link.OrderID)
	if err != nil {
		return &domain.PollResult{
			Status: PollStatusTechnicalError,
			Detail: err.Error(),
		}, nil
	}

	if resp.OrderNotOpened() {
		return &domain.PollResult{Status: PollStatusPending}, nil
	}
	if resp.IsError() {
		return &domain.PollResult{
			Status: PollStatusTechnicalError,
			Detail: fmt.Sprintf("%s %s", resp.ErrorCode, resp.ErrorMessage),
		}, nil
	}

	tx := resp.FirstTransaction()
	if tx == nil {
		return &domain.PollResult{Status: PollStatusPending, Detail: resp.OrderStatus}, nil
	}

	switch {
	case tx.IsSettled():
		link.Paid = true
		link.SettledInst = tx.SettledInstallments()
		link.AuthCode = tx.AuthorizationCode()
		link.TransactionID = tx.UUID
		link.BatchNumber = tx.SettlementBatch()
		if err := s.LinkRepo.MarkPaid(ctx, link); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		// The ticket now shows the wrong payment state; force a rebuild
		s.invalidateInvoice(ctx, link)
		return &domain.PollResult{
			Status:       PollStatusPaid,
			Paid:         true,
			Installments: link.SettledInst,
		}, nil

	case tx.IsVoided():
		if err := s.LinkRepo.MarkVoided(ctx, link.ID); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		return &domain.PollResult{
			Status: PollStatusVoided,
			Detail: tx.DetailedStatus,
		}, nil

	default:
		return &domain.PollResult{
			Status: strings.ToLower(tx.Status),
			Detail: tx.DetailedStatus,
		}, nil
	}
}

// SweepPending polls every unsettled link created after the cutoff. Used by
// the maintenance scheduler; each poll is the same idempotent operation the
// API exposes.
func (s *LinkService) SweepPending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	links, err := s.LinkRepo.ListUnsettledSince(ctx, cutoff, limit)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	settled := 0
	for _, link := range links {
		result, err := s.poll(ctx, link)
		if err != nil {
			return settled, err
		}
		if result.Paid {
			settled++
		}
	}
	return settled, nil
}

// ListLinks returns one page of a client's links, newest first
func (s *LinkService) ListLinks(ctx context.Context, clientID uuid.UUID, page, perPage int) (*domain.LinkListResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	links, err := s.LinkRepo.ListByClient(ctx, clientID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	total, err := s.LinkRepo.CountByClient(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.LinkListResponse{Links: links, Total: total, Page: page}, nil
}

// ActivePlans lists the installment plans a client may select
func (s *LinkService) ActivePlans(ctx context.Context) ([]*domain.InstallmentPlan, error) {
	plans, err := s.FeeRepo.ListPlans(ctx, true)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return plans, nil
}

// Stats summarizes a client's links for the dashboard
func (s *LinkService) Stats(ctx context.Context, clientID uuid.UUID) (*domain.DashboardStats, error) {
	stats, err := s.LinkRepo.Stats(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return stats, nil
}

// Breakdown itemizes a link's deduction for receipt display
func (s *LinkService) Breakdown(ctx context.Context, clientID, linkID uuid.UUID) (*pricing.Breakdown, error) {
	link, err := s.getOwnedLink(ctx, clientID, linkID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.FeeRepo.GetCurrent(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return pricing.Inverse(link, cfg)
}

// Invoice returns the plain-text ticket for a link, generating and caching
// it on first access.
func (s *LinkService) Invoice(ctx context.Context, clientID, linkID uuid.UUID) (filename, text string, err error) {
	link, err := s.getOwnedLink(ctx, clientID, linkID)
	if err != nil {
		return "", "", err
	}
	filename = fmt.Sprintf("ticket_%s.txt", link.ID)

	cacheKey := invoiceCacheKey(link.ID)
	if cached, cacheErr := s.redis.Get(ctx, cacheKey).Result(); cacheErr == nil && cached != "" {
		return filename, cached, nil
	}

	if link.InvoiceText == "" {
		client, err := s.ClientRepo.GetByID(ctx, link.ClientID)
		if err != nil {
			return "", "", customError.WrapDatabaseError(err)
		}
		link.InvoiceText = link.BuildInvoiceText(client.Name)
		if err := s.LinkRepo.SaveInvoiceText(ctx, link.ID, link.InvoiceText); err != nil {
			return "", "", customError.WrapDatabaseError(err)
		}
	}

	s.redis.Set(ctx, cacheKey, link.InvoiceText, invoiceCacheTTL)
	return filename, link.InvoiceText, nil
}

func (s *LinkService) getOwnedLink(ctx context.Context, clientID, linkID uuid.UUID) (*domain.PaymentLink, error) {
	link, err := s.LinkRepo.GetByID(ctx, linkID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLinkNotFound(linkID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if clientID != uuid.Nil && link.ClientID != clientID {
		return nil, customError.WrapLinkNotFound(linkID.String())
	}
	return link, nil
}

func (s *LinkService) invalidateInvoice(ctx context.Context, link *domain.PaymentLink) {
	s.redis.Del(ctx, invoiceCacheKey(link.ID))
	_ = s.LinkRepo.SaveInvoiceText(ctx, link.ID, "")
}

func invoiceCacheKey(id uuid.UUID) string {
	return "invoice:" + id.String()
}
