package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/shopspring/decimal"
)

// PartnerInput carries the writable fields of a referral partner.
type PartnerInput struct {
	Name           string
	PixKey         *string
	CommissionRate decimal.Decimal
}

func (s *Service) CreatePartner(ctx context.Context, userID uuid.UUID, input PartnerInput) (*models.Partner, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("partner name is required: %w", models.ErrValidation)
	}
	if input.CommissionRate.IsNegative() {
		return nil, fmt.Errorf("commission rate cannot be negative: %w", models.ErrValidation)
	}
	partner := &models.Partner{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           input.Name,
		PixKey:         input.PixKey,
		CommissionRate: input.CommissionRate,
		CreatedAt:      time.Now(),
	}
	if err := s.store.CreatePartner(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

func (s *Service) ListPartners(ctx context.Context, userID uuid.UUID) ([]*models.Partner, error) {
	return s.store.ListPartnersByUser(ctx, userID)
}

// DeletePartner removes a partner. Loans that named it keep working with the
// reference cleared, and commission entries already in the ledger stay put.
func (s *Service) DeletePartner(ctx context.Context, userID, partnerID uuid.UUID) error {
	partner, err := s.store.GetPartner(ctx, partnerID)
	if err != nil {
		return err
	}
	if partner.UserID != userID {
		return fmt.Errorf("partner %s: %w", partnerID, models.ErrNotFound)
	}
	return s.store.DeletePartner(ctx, partnerID)
}
