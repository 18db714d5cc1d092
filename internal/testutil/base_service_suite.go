package testutil

import (
	"context"
	"time"

	"github.com/rentledger/rentledger/internal/config"
	"github.com/rentledger/rentledger/internal/domain/agreement"
	"github.com/rentledger/rentledger/internal/domain/invoice"
	"github.com/rentledger/rentledger/internal/logger"
	"github.com/rentledger/rentledger/internal/types"
	"github.com/rentledger/rentledger/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	InvoiceRepo     invoice.Repository
	AgreementSource agreement.Source
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	logger *logger.Logger
	config *config.Configuration
	clock  *MockClock
	sender *RecordingSender
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	// Initialize logger with test config
	cfg := &config.Configuration{
		Deployment: config.DeploymentConfig{Mode: types.ModeLocal},
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
		Billing: config.BillingConfig{
			CycleDays:           30,
			DueDays:             7,
			DefaultInterestRate: decimal.RequireFromString("1.5"),
		},
	}
	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.clock = NewMockClock(time.Now().UTC())
	s.sender = NewRecordingSender()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		InvoiceRepo:     NewInMemoryInvoiceStore(),
		AgreementSource: NewInMemoryAgreementStore(),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.AgreementSource.(*InMemoryAgreementStore).Clear()
	s.sender.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// SetContext overrides the test context, e.g. to change caller roles
func (s *BaseServiceTestSuite) SetContext(ctx context.Context) {
	s.ctx = ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetAgreementStore returns the seeded agreement source
func (s *BaseServiceTestSuite) GetAgreementStore() *InMemoryAgreementStore {
	return s.stores.AgreementSource.(*InMemoryAgreementStore)
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetClock returns the mock clock
func (s *BaseServiceTestSuite) GetClock() *MockClock {
	return s.clock
}

// GetSender returns the recording notification sender
func (s *BaseServiceTestSuite) GetSender() *RecordingSender {
	return s.sender
}
