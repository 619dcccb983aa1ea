package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lumapay/paylink/internal/config"
	"github.com/lumapay/paylink/internal/domain"
	"github.com/lumapay/paylink/internal/gateway"
	customError "github.com/lumapay/paylink/pkg/errors"
	"github.com/lumapay/paylink/tests/mocks"
)

type linkServiceFixture struct {
	service    *LinkService
	linkRepo   *mocks.MockLinkRepository
	clientRepo *mocks.MockClientRepository
	feeRepo    *mocks.MockFeeConfigRepository
	gw         *mocks.MockGatewayAPI
}

func newLinkServiceFixture() *linkServiceFixture {
	linkRepo := new(mocks.MockLinkRepository)
	clientRepo := new(mocks.MockClientRepository)
	feeRepo := new(mocks.MockFeeConfigRepository)
	gw := new(mocks.MockGatewayAPI)

	cfg := &config.Config{
		Gateway: config.GatewayConfig{Currency: "ARS", Contract: "count"},
	}
	// Cache failures are non-fatal throughout the service, so an
	// unreachable address stands in for a real instance
	redisClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	return &linkServiceFixture{
		service:    NewLinkService(linkRepo, clientRepo, feeRepo, gw, redisClient, cfg),
		linkRepo:   linkRepo,
		clientRepo: clientRepo,
		feeRepo:    feeRepo,
		gw:         gw,
	}
}

func activeFeeConfig() *domain.FeeConfiguration {
	return &domain.FeeConfiguration{
		ID:                 uuid.New(),
		VATGeneral:         decimal.RequireFromString("21.00"),
		VATFinancing:       decimal.RequireFromString("10.50"),
		GatewayPctCredit:   decimal.RequireFromString("4.00"),
		SurchargePctCredit: decimal.RequireFromString("1.80"),
		GatewayPctDebit:    decimal.RequireFromString("3.49"),
		SurchargePctDebit:  decimal.RequireFromString("0.80"),
	}
}

func approvedClient() *domain.Client {
	return &domain.Client{
		ID:       uuid.New(),
		Name:     "Comercio Uno",
		Email:    "uno@example.com",
		Approved: true,
	}
}

func TestCreateLinkSuccess(t *testing.T) {
	f := newLinkServiceFixture()
	client := approvedClient()

	f.clientRepo.On("GetByID", mock.Anything, client.ID).Return(client, nil)
	f.feeRepo.On("GetCurrent", mock.Anything).Return(activeFeeConfig(), nil)
	f.feeRepo.On("GetActivePlan", mock.Anything, 3).Return(&domain.InstallmentPlan{
		Installments: 3,
		BaseRate:     decimal.RequireFromString("5.5000"),
		Active:       true,
	}, nil)
	f.gw.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req *gateway.CreateOrderRequest) bool {
		return req.Installments == 3 && req.Channel == "CREDIT" &&
			req.Currency == "ARS" && strings.HasPrefix(req.OrderID, "ORD-")
	})).Return(&gateway.CreateOrderResponse{PaymentURL: "https://pay.example/o/1"}, nil)
	f.linkRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PaymentLink")).Return(nil)

	link, err := f.service.CreateLink(context.Background(), client.ID, &domain.CreateLinkRequest{
		NetAmount:    decimal.RequireFromString("1500.00"),
		Installments: 3,
		CardType:     domain.CardTypeCredit,
		Description:  "  store order  ",
	})

	require.NoError(t, err)
	assert.Equal(t, client.ID, link.ClientID)
	assert.Equal(t, 3, link.Installments)
	assert.Equal(t, "https://pay.example/o/1", link.PaymentURL)
	assert.Equal(t, "store order", link.Description)
	assert.True(t, link.NetAmount.Equal(decimal.RequireFromString("1500.00")))
	assert.True(t, link.GrossAmount.Sub(link.DeductionAmt).Equal(link.ReceiverAmt))
	f.linkRepo.AssertExpectations(t)
	f.gw.AssertExpectations(t)
}

func TestCreateLinkGatewayDeclineLeavesNoRecord(t *testing.T) {
	f := newLinkServiceFixture()
	client := approvedClient()

	f.clientRepo.On("GetByID", mock.Anything, client.ID).Return(client, nil)
	f.feeRepo.On("GetCurrent", mock.Anything).Return(activeFeeConfig(), nil)
	f.gw.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, customError.WrapGatewayDeclined("INT_905", "invalid amount"))

	_, err := f.service.CreateLink(context.Background(), client.ID, &domain.CreateLinkRequest{
		NetAmount: decimal.RequireFromString("100.00"),
		CardType:  domain.CardTypeCredit,
	})

	require.Error(t, err)
	var bizErr *customError.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.ErrCodeGatewayDeclined, bizErr.Code)
	f.linkRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateLinkBlockedClient(t *testing.T) {
	f := newLinkServiceFixture()
	client := approvedClient()
	client.Blocked = true

	f.clientRepo.On("GetByID", mock.Anything, client.ID).Return(client, nil)

	_, err := f.service.CreateLink(context.Background(), client.ID, &domain.CreateLinkRequest{
		NetAmount: decimal.RequireFromString("100.00"),
		CardType:  domain.CardTypeDebit,
	})

	require.Error(t, err)
	_, ok := customError.AsValidation(err)
	assert.True(t, ok)
	f.gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	f.linkRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateLinkPlanMissing(t *testing.T) {
	f := newLinkServiceFixture()
	client := approvedClient()

	f.clientRepo.On("GetByID", mock.Anything, client.ID).Return(client, nil)
	f.feeRepo.On("GetCurrent", mock.Anything).Return(activeFeeConfig(), nil)
	f.feeRepo.On("GetActivePlan", mock.Anything, 9).Return(nil, sql.ErrNoRows)

	_, err := f.service.CreateLink(context.Background(), client.ID, &domain.CreateLinkRequest{
		NetAmount:    decimal.RequireFromString("100.00"),
		Installments: 9,
		CardType:     domain.CardTypeCredit,
	})

	require.Error(t, err)
	var bizErr *customError.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.ErrCodePlanNotFound, bizErr.Code)
	f.gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestPreviewPersistsNothing(t *testing.T) {
	f := newLinkServiceFixture()

	f.feeRepo.On("GetCurrent", mock.Anything).Return(activeFeeConfig(), nil)

	preview, err := f.service.Preview(context.Background(), &domain.PreviewRequest{
		NetAmount: decimal.RequireFromString("1000.00"),
		CardType:  domain.CardTypeCredit,
	})

	require.NoError(t, err)
	assert.True(t, preview.GrossAmount.Equal(decimal.RequireFromString("1075.48")))
	assert.True(t, preview.NetAmount.Equal(decimal.RequireFromString("1000.00")))
	f.linkRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.gw.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func pendingLink(clientID uuid.UUID) *domain.PaymentLink {
	return &domain.PaymentLink{
		ID:           uuid.New(),
		ClientID:     clientID,
		OrderID:      "ORD-TEST",
		CardType:     domain.CardTypeCredit,
		Installments: 3,
		SettledInst:  1,
	}
}

func TestPollAlreadyPaidSkipsGateway(t *testing.T) {
	f := newLinkServiceFixture()
	clientID := uuid.New()
	link := pendingLink(clientID)
	link.Paid = true
	link.SettledInst = 3

	f.linkRepo.On("GetByID", mock.Anything, link.ID).Return(link, nil)

	result, err := f.service.PollStatus(context.Background(), clientID, link.ID)

	require.NoError(t, err)
	assert.Equal(t, PollStatusPaid, result.Status)
	assert.True(t, result.Paid)
	assert.Equal(t, 3, result.Installments)
	f.gw.AssertNotCalled(t, "QueryOrder", mock.Anything, mock.Anything)
	f.linkRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestPollSettledTransition(t *testing.T) {
	f := newLinkServiceFixture()
	clientID := uuid.New()
	link := pendingLink(clientID)

	f.linkRepo.On("GetByID", mock.Anything, link.ID).Return(link, nil)
	f.gw.On("QueryOrder", mock.Anything, "ORD-TEST").Return(&gateway.QueryOrderResponse{
		Status: "SUCCESS",
		Transactions: []gateway.Transaction{{
			UUID:   "tx-9",
			Status: gateway.StatusCaptured,
			Details: &gateway.TransactionDetails{
				BatchNumber: "17",
				CardDetails: &gateway.CardDetails{
					InstallmentNumber: 3,
					AuthCode:          "AUTH-1",
				},
			},
		}},
	}, nil)
	f.linkRepo.On("MarkPaid", mock.Anything, link).Return(nil).Once()
	f.linkRepo.On("SaveInvoiceText", mock.Anything, link.ID, "").Return(nil)

	result, err := f.service.PollStatus(context.Background(), clientID, link.ID)

	require.NoError(t, err)
	assert.Equal(t, PollStatusPaid, result.Status)
	assert.True(t, result.Paid)
	assert.Equal(t, 3, result.Installments)
	assert.True(t, link.Paid)
	assert.Equal(t, "AUTH-1", link.AuthCode)
	assert.Equal(t, "tx-9", link.TransactionID)
	assert.Equal(t, "17", link.BatchNumber)
	f.linkRepo.AssertExpectations(t)
}

func TestPollVoidedTransition(t *testing.T) {
	f := newLinkServiceFixture()
	clientID := uuid.New()
	link := pendingLink(clientID)

	f.linkRepo.On("GetByID", mock.Anything, link.ID).Return(link, nil)
	f.gw.On("QueryOrder", mock.Anything, "ORD-TEST").Return(&gateway.QueryOrderResponse{
		Status: "SUCCESS",
		Transactions: []gateway.Transaction{{
			Status:         gateway.StatusRefused,
			DetailedStatus: "REFUSED_BY_ISSUER",
		}},
	}, nil)
	f.linkRepo.On("MarkVoided", mock.Anything, link.ID).Return(nil).Once()

	result, err := f.service.PollStatus(context.Background(), clientID, link.ID)

	require.NoError(t, err)
	assert.Equal(t, PollStatusVoided, result.Status)
	assert.False(t, result.Paid)
	assert.Equal(t, "REFUSED_BY_ISSUER", result.Detail)
	f.linkRepo.AssertExpectations(t)
}

func TestPollOrderNotOpenedIsPending(t *testing.T) {
	f := newLinkServiceFixture()
	clientID := uuid.New()
	link := pendingLink(clientID)

	f.linkRepo.On("GetByID", mock.Anything, link.ID).Return(link, nil)
	f.gw.On("QueryOrder", mock.Anything, "ORD-TEST").Return(&gateway.QueryOrderResponse{
		Status:    "ERROR",
		ErrorCode: gateway.ErrorCodeOrderNotOpened,
	}, nil)

	result, err := f.service.PollStatus(context.Background(), clientID, link.ID)

	require.NoError(t, err)
	assert.Equal(t, PollStatusPending, result.Status)
	f.linkRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
	f.linkRepo.AssertNotCalled(t, "MarkVoided", mock.Anything, mock.Anything)
}

func TestPollGatewayFailureIsSoft(t *testing.T) {
	// A gateway outage must not surface as a request error or mutate the
	// link; the caller just retries later
	f := newLinkServiceFixture()
	clientID := uuid.New()
	link := pendingLink(clientID)

	f.linkRepo.On("GetByID", mock.Anything, link.ID).Return(link, nil)
	f.gw.On("QueryOrder", mock.Anything, "ORD-TEST").
		Return(nil, customError.WrapGatewayTimeout(context.DeadlineExceeded))

	result, err := f.service.PollStatus(context.Background(), clientID, link.ID)

	require.NoError(t, err)
	assert.Equal(t, PollStatusTechnicalError, result.Status)
	assert.False(t, result.Paid)
	f.linkRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
	f.linkRepo.AssertNotCalled(t, "MarkVoided", mock.Anything, mock.Anything)
}

func TestPollStatusOwnership(t *testing.T) {
	f := newLinkServiceFixture()
	link := pendingLink(uuid.New())

	f.linkRepo.On("GetByID", mock.Anything, link.ID).Return(link, nil)

	_, err := f.service.PollStatus(context.Background(), uuid.New(), link.ID)

	require.Error(t, err)
	var bizErr *customError.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.ErrCodeLinkNotFound, bizErr.Code)
	f.gw.AssertNotCalled(t, "QueryOrder", mock.Anything, mock.Anything)
}

func TestSweepPendingCountsSettlements(t *testing.T) {
	f := newLinkServiceFixture()
	clientID := uuid.New()
	settling := pendingLink(clientID)
	staying := pendingLink(clientID)
	staying.OrderID = "ORD-STAY"

	f.linkRepo.On("ListUnsettledSince", mock.Anything, mock.Anything, 50).
		Return([]*domain.PaymentLink{settling, staying}, nil)
	f.gw.On("QueryOrder", mock.Anything, "ORD-TEST").Return(&gateway.QueryOrderResponse{
		Status: "SUCCESS",
		Transactions: []gateway.Transaction{{
			Status: gateway.StatusPaid,
		}},
	}, nil)
	f.gw.On("QueryOrder", mock.Anything, "ORD-STAY").Return(&gateway.QueryOrderResponse{
		Status:    "ERROR",
		ErrorCode: gateway.ErrorCodeOrderNotOpened,
	}, nil)
	f.linkRepo.On("MarkPaid", mock.Anything, settling).Return(nil).Once()
	f.linkRepo.On("SaveInvoiceText", mock.Anything, settling.ID, "").Return(nil)

	settled, err := f.service.SweepPending(context.Background(), time.Now().Add(-24*time.Hour), 50)

	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	f.linkRepo.AssertExpectations(t)
}

func TestListLinksClampsPaging(t *testing.T) {
	f := newLinkServiceFixture()
	clientID := uuid.New()

	f.linkRepo.On("ListByClient", mock.Anything, clientID, 10, 0).
		Return([]*domain.PaymentLink{}, nil)
	f.linkRepo.On("CountByClient", mock.Anything, clientID).Return(0, nil)

	resp, err := f.service.ListLinks(context.Background(), clientID, -3, 500)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 0, resp.Total)
	f.linkRepo.AssertExpectations(t)
}

func TestInvoiceGeneratedOnceAndStored(t *testing.T) {
	f := newLinkServiceFixture()
	clientID := uuid.New()
	link := pendingLink(clientID)
	link.NetAmount = decimal.RequireFromString("1000.00")
	link.Paid = true

	f.linkRepo.On("GetByID", mock.Anything, link.ID).Return(link, nil)
	f.clientRepo.On("GetByID", mock.Anything, clientID).
		Return(&domain.Client{ID: clientID, Name: "Comercio Uno"}, nil)
	f.linkRepo.On("SaveInvoiceText", mock.Anything, link.ID, mock.AnythingOfType("string")).
		Return(nil).Once()

	filename, text, err := f.service.Invoice(context.Background(), clientID, link.ID)

	require.NoError(t, err)
	assert.Equal(t, "ticket_"+link.ID.String()+".txt", filename)
	assert.Contains(t, text, "Comercio Uno")
	assert.Contains(t, text, "Payment state: PAID")
	f.linkRepo.AssertExpectations(t)
}

func TestInvoiceUsesStoredText(t *testing.T) {
	f := newLinkServiceFixture()
	clientID := uuid.New()
	link := pendingLink(clientID)
	link.InvoiceText = "stored ticket body"

	f.linkRepo.On("GetByID", mock.Anything, link.ID).Return(link, nil)

	_, text, err := f.service.Invoice(context.Background(), clientID, link.ID)

	require.NoError(t, err)
	assert.Equal(t, "stored ticket body", text)
	f.clientRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.linkRepo.AssertNotCalled(t, "SaveInvoiceText", mock.Anything, mock.Anything, mock.Anything)
}
