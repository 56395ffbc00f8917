package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/shopspring/decimal"
)

// ClientInput carries the writable fields of a client record. Optional fields
// replace the stored value wholesale; a nil Rating keeps the current rating
// (new clients default to 5).
type ClientInput struct {
	Name        string
	Whatsapp    *string
	CPF         *string
	RG          *string
	Address     *string
	MotherName  *string
	Pix         *string
	Bank        *string
	Observation *string
	Rating      *int
}

// ClientDetail is a client with its loans attached.
type ClientDetail struct {
	*models.Client
	Loans []*models.Loan `json:"loans"`
}

// ClientStats summarizes one client's borrowing history.
type ClientStats struct {
	TotalLoaned      decimal.Decimal `json:"total_loaned"`
	TotalDebt        decimal.Decimal `json:"total_debt"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	ActiveLoansCount int             `json:"active_loans_count"`
}

func (s *Service) CreateClient(ctx context.Context, userID uuid.UUID, input ClientInput) (*models.Client, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("client name is required: %w", models.ErrValidation)
	}
	rating := 5
	if input.Rating != nil {
		rating = *input.Rating
	}
	client := &models.Client{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        input.Name,
		Whatsapp:    input.Whatsapp,
		CPF:         input.CPF,
		RG:          input.RG,
		Address:     input.Address,
		MotherName:  input.MotherName,
		Pix:         input.Pix,
		Bank:        input.Bank,
		Observation: input.Observation,
		Rating:      rating,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateClient(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Service) UpdateClient(ctx context.Context, userID, clientID uuid.UUID, input ClientInput) (*models.Client, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("client name is required: %w", models.ErrValidation)
	}
	client, err := clientOwned(ctx, s.store, userID, clientID)
	if err != nil {
		return nil, err
	}

	client.Name = input.Name
	client.Whatsapp = input.Whatsapp
	client.CPF = input.CPF
	client.RG = input.RG
	client.Address = input.Address
	client.MotherName = input.MotherName
	client.Pix = input.Pix
	client.Bank = input.Bank
	client.Observation = input.Observation
	if input.Rating != nil {
		client.Rating = *input.Rating
	}

	if err := s.store.UpdateClient(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient removes a client and cascades to its loans and installments.
// Only the owning user may delete a client.
func (s *Service) DeleteClient(ctx context.Context, userID, clientID uuid.UUID) error {
	if _, err := clientOwned(ctx, s.store, userID, clientID); err != nil {
		return err
	}
	return s.store.DeleteClient(ctx, clientID)
}

// ListClients returns the user's clients ordered by name, each with its loans.
func (s *Service) ListClients(ctx context.Context, userID uuid.UUID) ([]*ClientDetail, error) {
	clients, err := s.store.ListClientsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	details := make([]*ClientDetail, 0, len(clients))
	for _, client := range clients {
		loans, err := s.store.ListLoansByClient(ctx, client.ID)
		if err != nil {
			return nil, err
		}
		if loans == nil {
			loans = []*models.Loan{}
		}
		details = append(details, &ClientDetail{Client: client, Loans: loans})
	}
	return details, nil
}

// GetClientStats aggregates one client's loans. Pending installments of
// renegotiated loans are excluded from the outstanding debt, consistent with
// the dashboard.
func (s *Service) GetClientStats(ctx context.Context, userID, clientID uuid.UUID) (*ClientStats, error) {
	if _, err := clientOwned(ctx, s.store, userID, clientID); err != nil {
		return nil, err
	}
	loans, err := s.store.ListLoansByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	stats := &ClientStats{
		TotalLoaned: decimal.Zero,
		TotalDebt:   decimal.Zero,
		TotalPaid:   decimal.Zero,
	}
	for _, loan := range loans {
		stats.TotalLoaned = stats.TotalLoaned.Add(loan.Amount)

		installments, err := s.store.ListInstallmentsByLoan(ctx, loan.ID)
		if err != nil {
			return nil, err
		}
		pending := 0
		for _, installment := range installments {
			switch installment.Status {
			case models.InstallmentStatusPending:
				if loan.Status == models.LoanStatusActive {
					pending++
					stats.TotalDebt = stats.TotalDebt.Add(installment.Amount)
				}
			case models.InstallmentStatusPaid, models.InstallmentStatusInterestPaid:
				if installment.PaidAmount.Valid {
					stats.TotalPaid = stats.TotalPaid.Add(installment.PaidAmount.Decimal)
				}
			}
		}
		if pending > 0 {
			stats.ActiveLoansCount++
		}
	}
	return stats, nil
}
