package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/shopspring/decimal"
)

// DashboardSummary aggregates a user's portfolio: principal out the door,
// contracted repayment total, overdue pending debt and everything received.
type DashboardSummary struct {
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalReceivable decimal.Decimal `json:"total_receivable"`
	TotalLate       decimal.Decimal `json:"total_late"`
	TotalReceived   decimal.Decimal `json:"total_received"`
}

// InstallmentAlert is an installment worth flagging, with its loan and client
// attached for display.
type InstallmentAlert struct {
	Installment *models.Installment `json:"installment"`
	Loan        *models.Loan        `json:"loan"`
	Client      *models.Client      `json:"client"`
}

// Alerts lists the pending installments due today and the overdue ones.
type Alerts struct {
	DueToday []InstallmentAlert `json:"due_today"`
	Late     []InstallmentAlert `json:"late"`
}

// GetDashboardSummary computes the user's totals in one read-only pass.
// Installments of renegotiated loans are frozen history and never count as
// outstanding debt; amounts received on them still count as received.
func (s *Service) GetDashboardSummary(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error) {
	loans, err := s.store.ListLoansByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := startOfDay(time.Now())
	summary := &DashboardSummary{
		TotalInvested:   decimal.Zero,
		TotalReceivable: decimal.Zero,
		TotalLate:       decimal.Zero,
		TotalReceived:   decimal.Zero,
	}

	for _, loan := range loans {
		summary.TotalInvested = summary.TotalInvested.Add(loan.Amount)
		summary.TotalReceivable = summary.TotalReceivable.Add(loan.TotalAmount)

		installments, err := s.store.ListInstallmentsByLoan(ctx, loan.ID)
		if err != nil {
			return nil, err
		}
		for _, installment := range installments {
			switch installment.Status {
			case models.InstallmentStatusPending:
				if loan.Status == models.LoanStatusActive && installment.DueDate.Before(today) {
					summary.TotalLate = summary.TotalLate.Add(installment.Amount)
				}
			case models.InstallmentStatusPaid, models.InstallmentStatusInterestPaid:
				if installment.PaidAmount.Valid {
					summary.TotalReceived = summary.TotalReceived.Add(installment.PaidAmount.Decimal)
				}
			}
		}
	}
	return summary, nil
}

// GetAlerts lists the user's pending installments due today and the overdue
// ones, skipping renegotiated loans.
func (s *Service) GetAlerts(ctx context.Context, userID uuid.UUID) (*Alerts, error) {
	loans, err := s.store.ListLoansByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	clients, err := s.clientIndex(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := startOfDay(now)
	alerts := &Alerts{
		DueToday: []InstallmentAlert{},
		Late:     []InstallmentAlert{},
	}

	for _, loan := range loans {
		if loan.Status != models.LoanStatusActive {
			continue
		}
		installments, err := s.store.ListInstallmentsByLoan(ctx, loan.ID)
		if err != nil {
			return nil, err
		}
		for _, installment := range installments {
			if installment.Status != models.InstallmentStatusPending {
				continue
			}
			alert := InstallmentAlert{Installment: installment, Loan: loan, Client: clients[loan.ClientID]}
			switch {
			case sameDay(installment.DueDate, now):
				alerts.DueToday = append(alerts.DueToday, alert)
			case installment.DueDate.Before(today):
				alerts.Late = append(alerts.Late, alert)
			}
		}
	}
	return alerts, nil
}
