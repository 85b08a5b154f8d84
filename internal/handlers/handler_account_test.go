package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
	"github.com/meridianfx/ledger-core/internal/handlers"
	"github.com/meridianfx/ledger-core/internal/platform/config"
)

// --- Mock IdentityService ---

type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoginResponse), args.Error(1)
}

func (m *MockIdentityService) CreateUser(ctx context.Context, caller domain.CallContext, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockIdentityService) Resolve(ctx context.Context, token string) (*domain.CallContext, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CallContext), args.Error(1)
}

func (m *MockIdentityService) GenerateToken(user *domain.User, ttl time.Duration) (string, error) {
	args := m.Called(user, ttl)
	return args.String(0), args.Error(1)
}

var _ portssvc.IdentityService = (*MockIdentityService)(nil)

// --- Mock AccountService ---

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, caller domain.CallContext, req dto.CreateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, caller domain.CallContext, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, caller, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, caller domain.CallContext, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, caller domain.CallContext, accountID string) error {
	args := m.Called(ctx, caller, accountID)
	return args.Error(0)
}

func (m *MockAccountService) SeedDefaultChart(ctx context.Context, caller domain.CallContext, tenantID string, baseCurrency string) error {
	args := m.Called(ctx, caller, tenantID, baseCurrency)
	return args.Error(0)
}

var _ portssvc.AccountService = (*MockAccountService)(nil)

// --- Test Suite ---

type AccountHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockIdentity *MockIdentityService
	mockAccounts *MockAccountService
	caller       domain.CallContext
	token        string
}

func (s *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockIdentity = new(MockIdentityService)
	s.mockAccounts = new(MockAccountService)

	s.token = "test-token"
	s.caller = domain.CallContext{
		TenantID: uuid.NewString(),
		UserID:   uuid.NewString(),
		Role:     domain.RoleTenantAdmin,
	}

	container := &portssvc.ServiceContainer{
		Identity: s.mockIdentity,
		Account:  s.mockAccounts,
	}
	limiterInstance := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 1000})
	handlers.RegisterRoutes(s.router, &config.Config{}, container, limiterInstance)
}

// serve issues an authenticated request against the test router.
func (s *AccountHandlerTestSuite) serve(method, url, body string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AccountHandlerTestSuite) expectResolve() {
	s.mockIdentity.On("Resolve", mock.Anything, s.token).Return(&s.caller, nil).Once()
}

// --- Test Cases ---

func (s *AccountHandlerTestSuite) TestListAccountsSuccess() {
	s.expectResolve()

	accounts := []domain.Account{
		{
			AccountID:    uuid.NewString(),
			TenantID:     s.caller.TenantID,
			Code:         "1000",
			Name:         "Cash on Hand",
			AccountType:  domain.Asset,
			CurrencyCode: "USD",
			Balance:      decimal.NewFromInt(250),
			IsActive:     true,
		},
	}
	s.mockAccounts.On("ListAccounts", mock.Anything, s.caller,
		mock.MatchedBy(func(p dto.ListAccountsParams) bool {
			return p.Type == "ASSET" && p.Limit == 10
		}),
	).Return(accounts, nil).Once()

	w := s.serve(http.MethodGet, "/api/v1/accounts?type=ASSET&limit=10", "")

	s.Equal(http.StatusOK, w.Code)

	var body struct {
		Accounts []dto.AccountResponse `json:"accounts"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Require().Len(body.Accounts, 1)
	s.Equal(accounts[0].AccountID, body.Accounts[0].AccountID)
	s.Equal("1000", body.Accounts[0].Code)
	s.True(body.Accounts[0].Balance.Equal(decimal.NewFromInt(250)))

	s.mockIdentity.AssertExpectations(s.T())
	s.mockAccounts.AssertExpectations(s.T())
}

func (s *AccountHandlerTestSuite) TestCreateAccountSuccess() {
	s.expectResolve()

	created := &domain.Account{
		AccountID:    uuid.NewString(),
		TenantID:     s.caller.TenantID,
		Code:         "1105",
		Name:         "Settlement Bank EUR",
		AccountType:  domain.Asset,
		CurrencyCode: "EUR",
		IsActive:     true,
	}
	s.mockAccounts.On("CreateAccount", mock.Anything, s.caller,
		mock.MatchedBy(func(req dto.CreateAccountRequest) bool {
			return req.Code == "1105" && req.AccountType == domain.Asset && req.CurrencyCode == "EUR"
		}),
	).Return(created, nil).Once()

	body := `{"code":"1105","name":"Settlement Bank EUR","accountType":"ASSET","currencyCode":"EUR"}`
	w := s.serve(http.MethodPost, "/api/v1/accounts", body)

	s.Equal(http.StatusCreated, w.Code)

	var resp dto.AccountResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(created.AccountID, resp.AccountID)

	s.mockAccounts.AssertExpectations(s.T())
}

func (s *AccountHandlerTestSuite) TestCreateAccountMalformedBody() {
	s.expectResolve()

	// currencyCode must be exactly three characters.
	body := `{"code":"1105","name":"Settlement Bank EUR","accountType":"ASSET","currencyCode":"EURO"}`
	w := s.serve(http.MethodPost, "/api/v1/accounts", body)

	s.Equal(http.StatusBadRequest, w.Code)
	s.mockAccounts.AssertNotCalled(s.T(), "CreateAccount")
}

func (s *AccountHandlerTestSuite) TestGetAccountNotFound() {
	s.expectResolve()

	accountID := uuid.NewString()
	s.mockAccounts.On("GetAccount", mock.Anything, s.caller, accountID).
		Return(nil, apperrors.ErrUnknownAccount).Once()

	w := s.serve(http.MethodGet, "/api/v1/accounts/"+accountID, "")

	s.Equal(http.StatusNotFound, w.Code)
	s.mockAccounts.AssertExpectations(s.T())
}

func (s *AccountHandlerTestSuite) TestDeactivateAccountConflict() {
	s.expectResolve()

	accountID := uuid.NewString()
	s.mockAccounts.On("DeactivateAccount", mock.Anything, s.caller, accountID).
		Return(apperrors.ErrValidation).Once()

	w := s.serve(http.MethodDelete, "/api/v1/accounts/"+accountID, "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.mockAccounts.AssertExpectations(s.T())
}

func (s *AccountHandlerTestSuite) TestMissingAuthorizationHeader() {
	req, err := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	s.Require().NoError(err)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.mockAccounts.AssertNotCalled(s.T(), "ListAccounts")
}

func (s *AccountHandlerTestSuite) TestInvalidToken() {
	s.mockIdentity.On("Resolve", mock.Anything, s.token).
		Return(nil, apperrors.ErrAuth).Once()

	w := s.serve(http.MethodGet, "/api/v1/accounts", "")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.mockAccounts.AssertNotCalled(s.T(), "ListAccounts")
}

// --- Run Test Suite ---

func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
