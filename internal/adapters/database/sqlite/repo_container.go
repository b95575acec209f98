package sqlite

import (
	"github.com/jmoiron/sqlx"

	portsrepo "github.com/cashbookhq/cashbook-bot/internal/core/ports/repositories"
)

func NewRepositoryProvider(db *sqlx.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RecordRepo:  NewRecordRepository(db),
		PaymentRepo: NewPaymentRepository(db),
	}
}
