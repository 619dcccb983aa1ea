package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lumapay/paylink/internal/domain"
	"github.com/lumapay/paylink/internal/repository"
	customError "github.com/lumapay/paylink/pkg/errors"
	"github.com/lumapay/paylink/tests/mocks"
)

type adminServiceFixture struct {
	service    *AdminService
	clientRepo *mocks.MockClientRepository
	feeRepo    *mocks.MockFeeConfigRepository
}

func newAdminServiceFixture() *adminServiceFixture {
	adminRepo := new(mocks.MockAdminRepository)
	clientRepo := new(mocks.MockClientRepository)
	feeRepo := new(mocks.MockFeeConfigRepository)

	return &adminServiceFixture{
		service:    NewAdminService(adminRepo, clientRepo, feeRepo, NewClientService(clientRepo, nil), nil),
		clientRepo: clientRepo,
		feeRepo:    feeRepo,
	}
}

func TestApproveClient(t *testing.T) {
	f := newAdminServiceFixture()
	client := &domain.Client{ID: uuid.New(), Name: "Comercio Uno"}

	f.clientRepo.On("GetByID", mock.Anything, client.ID).Return(client, nil)
	f.clientRepo.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Client) bool {
		return c.Approved
	})).Return(nil)

	require.NoError(t, f.service.ApproveClient(context.Background(), client.ID))
	f.clientRepo.AssertExpectations(t)
}

func TestApproveClientAlreadyApproved(t *testing.T) {
	f := newAdminServiceFixture()
	client := &domain.Client{ID: uuid.New(), Approved: true}

	f.clientRepo.On("GetByID", mock.Anything, client.ID).Return(client, nil)

	err := f.service.ApproveClient(context.Background(), client.ID)

	require.Error(t, err)
	_, ok := customError.AsValidation(err)
	assert.True(t, ok)
	f.clientRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestListClientsFiltersApproved(t *testing.T) {
	f := newAdminServiceFixture()

	f.clientRepo.On("List", mock.Anything, mock.MatchedBy(func(filter repository.ClientFilter) bool {
		return filter.Approved != nil && *filter.Approved && filter.NameContains == "uno"
	})).Return([]*domain.Client{}, nil)

	_, err := f.service.ListClients(context.Background(), "uno")

	require.NoError(t, err)
	f.clientRepo.AssertExpectations(t)
}

func TestUpdateFeeConfigurationStoresNewRecord(t *testing.T) {
	f := newAdminServiceFixture()

	f.feeRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.FeeConfiguration")).Return(nil)

	cfg, err := f.service.UpdateFeeConfiguration(context.Background(), &domain.UpdateFeeConfigurationRequest{
		VATGeneral:         decimal.RequireFromString("21.00"),
		VATFinancing:       decimal.RequireFromString("10.50"),
		GatewayPctCredit:   decimal.RequireFromString("4.00"),
		SurchargePctCredit: decimal.RequireFromString("1.80"),
		GatewayPctDebit:    decimal.RequireFromString("3.49"),
		SurchargePctDebit:  decimal.RequireFromString("0.80"),
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, cfg.ID)
	f.feeRepo.AssertExpectations(t)
}

func TestUpdateFeeConfigurationRejectsNegative(t *testing.T) {
	f := newAdminServiceFixture()

	_, err := f.service.UpdateFeeConfiguration(context.Background(), &domain.UpdateFeeConfigurationRequest{
		VATGeneral:       decimal.RequireFromString("21.00"),
		GatewayPctCredit: decimal.RequireFromString("-1.00"),
	})

	require.Error(t, err)
	_, ok := customError.AsValidation(err)
	assert.True(t, ok)
	f.feeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateFeeConfigurationRejectsExcessiveTotal(t *testing.T) {
	// 60 + 50 base loaded with 21% VAT is well past 100
	f := newAdminServiceFixture()

	_, err := f.service.UpdateFeeConfiguration(context.Background(), &domain.UpdateFeeConfigurationRequest{
		VATGeneral:         decimal.RequireFromString("21.00"),
		GatewayPctCredit:   decimal.RequireFromString("60.00"),
		SurchargePctCredit: decimal.RequireFromString("50.00"),
	})

	require.Error(t, err)
	var bizErr *customError.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.ErrCodeConfigInvalid, bizErr.Code)
	f.feeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreatePlanValidation(t *testing.T) {
	f := newAdminServiceFixture()

	_, err := f.service.CreatePlan(context.Background(), &domain.UpsertInstallmentPlanRequest{
		Installments: 0,
		BaseRate:     decimal.RequireFromString("-1"),
	})

	require.Error(t, err)
	ve, ok := customError.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, ve.Messages, 3) // bad count, negative rate, missing label
	f.feeRepo.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything)
}

func TestCreatePlan(t *testing.T) {
	f := newAdminServiceFixture()

	f.feeRepo.On("CreatePlan", mock.Anything, mock.MatchedBy(func(plan *domain.InstallmentPlan) bool {
		return plan.Installments == 6 && plan.Active
	})).Return(nil)

	plan, err := f.service.CreatePlan(context.Background(), &domain.UpsertInstallmentPlanRequest{
		Installments: 6,
		Label:        "6 cuotas",
		BaseRate:     decimal.RequireFromString("9.0000"),
		Active:       true,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, plan.ID)
	f.feeRepo.AssertExpectations(t)
}
