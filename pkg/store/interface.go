package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
)

// Storage defines the persistence operations the core depends on.
//
// Tx runs fn against a transactional view of the store: either every write fn
// performs is committed, or none is. Implementations must support calling Tx
// from within fn (the nested call joins the outer transaction).
type Storage interface {
	Tx(ctx context.Context, fn func(Storage) error) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateAPIToken(ctx context.Context, token *models.APIToken) error
	GetUserByTokenHash(ctx context.Context, hash string) (*models.User, error)

	CreateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	UpdateClient(ctx context.Context, client *models.Client) error
	// DeleteClient removes a client together with its loans and their
	// installments.
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ListClientsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Client, error)

	CreatePartner(ctx context.Context, partner *models.Partner) error
	GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	// DeletePartner removes a partner and clears the weak reference on loans
	// that named it.
	DeletePartner(ctx context.Context, id uuid.UUID) error
	ListPartnersByUser(ctx context.Context, userID uuid.UUID) ([]*models.Partner, error)

	CreateLoan(ctx context.Context, loan *models.Loan) error
	GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	UpdateLoan(ctx context.Context, loan *models.Loan) error
	// DeleteLoan removes a loan together with its installments.
	DeleteLoan(ctx context.Context, id uuid.UUID) error
	ListLoansByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Loan, error)
	// ListLoansByUser returns all loans reachable through the user's clients,
	// newest first.
	ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]*models.Loan, error)

	CreateInstallment(ctx context.Context, installment *models.Installment) error
	GetInstallment(ctx context.Context, id uuid.UUID) (*models.Installment, error)
	UpdateInstallment(ctx context.Context, installment *models.Installment) error
	DeleteInstallment(ctx context.Context, id uuid.UUID) error
	// ListInstallmentsByLoan returns the loan's installments ordered by number.
	ListInstallmentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*models.Installment, error)

	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	// ListTransactionsByUser returns the user's ledger, newest first.
	ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)

	Close() error
}
