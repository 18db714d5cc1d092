package repository

import (
	"github.com/rentledger/rentledger/internal/cache"
	"github.com/rentledger/rentledger/internal/domain/agreement"
	"github.com/rentledger/rentledger/internal/domain/invoice"
	"github.com/rentledger/rentledger/internal/logger"
	"github.com/rentledger/rentledger/internal/postgres"
	postgresRepo "github.com/rentledger/rentledger/internal/repository/postgres"
)

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewAgreementSource(db *postgres.DB, c cache.Cache, logger *logger.Logger) agreement.Source {
	return NewCachedAgreementSource(postgresRepo.NewAgreementRepository(db, logger), c, logger)
}
