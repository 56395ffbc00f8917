package lending

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/hkloans/loantrack/pkg/store"
	"github.com/shopspring/decimal"
)

// CreateLoanInput carries the parameters for a new loan. Callers are expected
// to have parsed raw request values into these types already.
type CreateLoanInput struct {
	ClientID         uuid.UUID
	PartnerID        *uuid.UUID
	Principal        decimal.Decimal
	TotalAmount      decimal.Decimal
	InstallmentCount int
	StartDate        time.Time
}

// LoanDetail is a loan with its related entities attached for presentation.
type LoanDetail struct {
	*models.Loan
	Client       *models.Client        `json:"client,omitempty"`
	Partner      *models.Partner       `json:"partner,omitempty"`
	Installments []*models.Installment `json:"installments"`
}

// CreateLoan persists a loan with its generated schedule and records the
// disbursement in the ledger, plus the partner commission when a referral
// partner with a commission rate is attached. All writes are one atomic unit.
func (s *Service) CreateLoan(ctx context.Context, userID uuid.UUID, input CreateLoanInput) (*LoanDetail, error) {
	if input.Principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("principal must be positive: %w", models.ErrValidation)
	}
	if input.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("total amount must be positive: %w", models.ErrValidation)
	}
	if input.InstallmentCount < 1 {
		return nil, fmt.Errorf("installment count must be at least 1: %w", models.ErrValidation)
	}

	client, err := clientOwned(ctx, s.store, userID, input.ClientID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	loan := &models.Loan{
		ID:           uuid.New(),
		ClientID:     client.ID,
		PartnerID:    input.PartnerID,
		Amount:       input.Principal,
		TotalAmount:  input.TotalAmount,
		InterestRate: deriveInterestRate(input.Principal, input.TotalAmount),
		StartDate:    input.StartDate,
		Status:       models.LoanStatusActive,
		CreatedAt:    now,
	}
	installments := buildSchedule(loan.ID, input.TotalAmount, input.InstallmentCount, input.StartDate)

	var partner *models.Partner
	err = s.store.Tx(ctx, func(st store.Storage) error {
		if err := st.CreateLoan(ctx, loan); err != nil {
			return err
		}
		for _, installment := range installments {
			if err := st.CreateInstallment(ctx, installment); err != nil {
				return err
			}
		}

		if err := recordEntry(ctx, st, userID, models.TransactionTypeOut,
			fmt.Sprintf("Loan to %s", client.Name), input.Principal, CategoryLoan, now); err != nil {
			return err
		}

		if input.PartnerID == nil {
			return nil
		}
		partner, err = st.GetPartner(ctx, *input.PartnerID)
		if err != nil {
			return err
		}
		if partner.UserID != userID {
			return fmt.Errorf("partner %s: %w", partner.ID, models.ErrNotFound)
		}
		// Commission is computed on the profit, not the gross total.
		profit := input.TotalAmount.Sub(input.Principal)
		commission := profit.Mul(partner.CommissionRate).Div(oneHundred)
		if commission.GreaterThan(decimal.Zero) {
			return recordEntry(ctx, st, userID, models.TransactionTypeOut,
				fmt.Sprintf("Commission %s - %s", partner.Name, client.Name),
				commission, CategoryCommission, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &LoanDetail{Loan: loan, Client: client, Partner: partner, Installments: installments}, nil
}

// ListLoans returns the user's loans, newest first, each with its client,
// partner and due-date-ordered installments.
func (s *Service) ListLoans(ctx context.Context, userID uuid.UUID) ([]*LoanDetail, error) {
	loans, err := s.store.ListLoansByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	clients, err := s.clientIndex(ctx, userID)
	if err != nil {
		return nil, err
	}
	partners, err := s.partnerIndex(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]*LoanDetail, 0, len(loans))
	for _, loan := range loans {
		installments, err := s.store.ListInstallmentsByLoan(ctx, loan.ID)
		if err != nil {
			return nil, err
		}
		sort.Slice(installments, func(i, j int) bool {
			return installments[i].DueDate.Before(installments[j].DueDate)
		})
		detail := &LoanDetail{Loan: loan, Client: clients[loan.ClientID], Installments: installments}
		if loan.PartnerID != nil {
			detail.Partner = partners[*loan.PartnerID]
		}
		details = append(details, detail)
	}
	return details, nil
}

// DeleteLoan removes a loan and all of its installments. Irreversible.
func (s *Service) DeleteLoan(ctx context.Context, userID, loanID uuid.UUID) error {
	if _, _, err := loanOwned(ctx, s.store, userID, loanID); err != nil {
		return err
	}
	return s.store.DeleteLoan(ctx, loanID)
}

func (s *Service) clientIndex(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*models.Client, error) {
	clients, err := s.store.ListClientsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]*models.Client, len(clients))
	for _, client := range clients {
		index[client.ID] = client
	}
	return index, nil
}

func (s *Service) partnerIndex(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*models.Partner, error) {
	partners, err := s.store.ListPartnersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]*models.Partner, len(partners))
	for _, partner := range partners {
		index[partner.ID] = partner
	}
	return index, nil
}
