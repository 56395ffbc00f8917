package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the tenant boundary: every client, partner and cash-flow entry is
// scoped to exactly one user.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// APIToken authorizes requests on behalf of a user. Only the SHA-256 hash of
// the issued token is stored.
type APIToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is a borrower registered by a user.
type Client struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Whatsapp    *string   `json:"whatsapp,omitempty"`
	CPF         *string   `json:"cpf,omitempty"`
	RG          *string   `json:"rg,omitempty"`
	Address     *string   `json:"address,omitempty"`
	MotherName  *string   `json:"mother_name,omitempty"`
	Pix         *string   `json:"pix,omitempty"`
	Bank        *string   `json:"bank,omitempty"`
	Observation *string   `json:"observation,omitempty"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// Partner is a referral partner that may earn a commission when a loan it
// referred is disbursed. Loans reference partners weakly: deleting a partner
// does not touch commissions already recorded in the ledger.
type Partner struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Name           string          `json:"name"`
	PixKey         *string         `json:"pix_key,omitempty"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	CreatedAt      time.Time       `json:"created_at"`
}

type LoanStatus string

const (
	LoanStatusActive       LoanStatus = "ACTIVE"
	LoanStatusRenegotiated LoanStatus = "RENEGOTIATED"
)

// Loan is a disbursed amount with a fixed installment schedule.
// OriginalLoanID links a renegotiated successor back to the loan it replaced;
// it is lineage only, never ownership.
type Loan struct {
	ID             uuid.UUID       `json:"id"`
	ClientID       uuid.UUID       `json:"client_id"`
	PartnerID      *uuid.UUID      `json:"partner_id,omitempty"`
	OriginalLoanID *uuid.UUID      `json:"original_loan_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`       // principal disbursed
	TotalAmount    decimal.Decimal `json:"total_amount"` // contracted repayment total
	InterestRate   decimal.Decimal `json:"interest_rate"`
	StartDate      time.Time       `json:"start_date"`
	Status         LoanStatus      `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

type InstallmentStatus string

const (
	InstallmentStatusPending      InstallmentStatus = "PENDING"
	InstallmentStatusPaid         InstallmentStatus = "PAID"
	InstallmentStatusInterestPaid InstallmentStatus = "INTEREST_PAID"
)

// Installment is one scheduled payment obligation of a loan. Numbers are
// unique within a loan and grow past the original count when rollovers or
// duplications append new installments; they need not stay contiguous after
// deletions.
type Installment struct {
	ID         uuid.UUID           `json:"id"`
	LoanID     uuid.UUID           `json:"loan_id"`
	Number     int                 `json:"number"`
	Amount     decimal.Decimal     `json:"amount"`
	DueDate    time.Time           `json:"due_date"`
	Status     InstallmentStatus   `json:"status"`
	PaidAmount decimal.NullDecimal `json:"paid_amount,omitempty"`
	PaidDate   *time.Time          `json:"paid_date,omitempty"`
}

type TransactionType string

const (
	TransactionTypeIn  TransactionType = "IN"
	TransactionTypeOut TransactionType = "OUT"
)

// Transaction is an append-only cash-flow ledger entry. Entries are never
// updated, only deleted by their owning user.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
}
