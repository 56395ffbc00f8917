package lending

import (
	"context"
	"testing"
	"time"

	"github.com/hkloans/loantrack/pkg/models"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateClientDefaults(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")

	client, err := svc.CreateClient(ctx, user.ID, ClientInput{Name: "John", Whatsapp: strPtr("+5511999")})
	require.NoError(t, err)
	require.Equal(t, 5, client.Rating)
	require.Equal(t, "John", client.Name)
	require.Equal(t, "+5511999", *client.Whatsapp)
	require.Equal(t, user.ID, client.UserID)
}

func TestCreateClientRequiresName(t *testing.T) {
	svc, st := testService(t)
	user := seedUser(t, st, "alice")

	_, err := svc.CreateClient(context.Background(), user.ID, ClientInput{})
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateClientDuplicateCPF(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")

	_, err := svc.CreateClient(ctx, user.ID, ClientInput{Name: "John", CPF: strPtr("123.456.789-00")})
	require.NoError(t, err)
	_, err = svc.CreateClient(ctx, user.ID, ClientInput{Name: "Jane", CPF: strPtr("123.456.789-00")})
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestCreateClientSameCPFDifferentUsers(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	_, err := svc.CreateClient(ctx, alice.ID, ClientInput{Name: "John", CPF: strPtr("123.456.789-00")})
	require.NoError(t, err)
	_, err = svc.CreateClient(ctx, bob.ID, ClientInput{Name: "John", CPF: strPtr("123.456.789-00")})
	require.NoError(t, err)
}

func TestUpdateClientReplacesOptionalFields(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")

	client, err := svc.CreateClient(ctx, user.ID, ClientInput{
		Name:     "John",
		Whatsapp: strPtr("+5511999"),
		Pix:      strPtr("john@pix"),
	})
	require.NoError(t, err)

	// Omitted optional fields clear; nil rating keeps the stored one.
	updated, err := svc.UpdateClient(ctx, user.ID, client.ID, ClientInput{
		Name: "John Smith",
		Pix:  strPtr("johnsmith@pix"),
	})
	require.NoError(t, err)
	require.Equal(t, "John Smith", updated.Name)
	require.Nil(t, updated.Whatsapp)
	require.Equal(t, "johnsmith@pix", *updated.Pix)
	require.Equal(t, 5, updated.Rating)
}

func TestClientCrossTenantHidden(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	owner := seedUser(t, st, "alice")
	intruder := seedUser(t, st, "mallory")
	client := seedClient(t, st, owner.ID, "John")

	_, err := svc.UpdateClient(ctx, intruder.ID, client.ID, ClientInput{Name: "Hacked"})
	require.ErrorIs(t, err, models.ErrNotFound)
	require.ErrorIs(t, svc.DeleteClient(ctx, intruder.ID, client.ID), models.ErrNotFound)
	_, err = svc.GetClientStats(ctx, intruder.ID, client.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteClientCascades(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)

	require.NoError(t, svc.DeleteClient(ctx, user.ID, client.ID))

	_, err := st.GetClient(ctx, client.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = st.GetLoan(ctx, loan.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	for _, installment := range loan.Installments {
		_, err = st.GetInstallment(ctx, installment.ID)
		require.ErrorIs(t, err, models.ErrNotFound)
	}
}

func TestListClientsSortedWithLoans(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	zed := seedClient(t, st, user.ID, "Zed")
	anna := seedClient(t, st, user.ID, "Anna")
	seedLoan(t, svc, user.ID, zed.ID)

	details, err := svc.ListClients(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	require.Equal(t, anna.ID, details[0].ID)
	require.Empty(t, details[0].Loans)
	require.Equal(t, zed.ID, details[1].ID)
	require.Len(t, details[1].Loans, 1)
}

func TestClientStats(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")
	loan := seedLoan(t, svc, user.ID, client.ID)

	require.NoError(t, svc.PayInstallment(ctx, user.ID, loan.Installments[0].ID, PayInstallmentInput{
		Amount: dec("400"),
		Type:   PaymentTypeFull,
	}))

	stats, err := svc.GetClientStats(ctx, user.ID, client.ID)
	require.NoError(t, err)
	require.True(t, stats.TotalLoaned.Equal(dec("1000")))
	require.True(t, stats.TotalDebt.Equal(dec("800")))
	require.True(t, stats.TotalPaid.Equal(dec("400")))
	require.Equal(t, 1, stats.ActiveLoansCount)
}

func TestClientStatsSettledLoanNotActive(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	user := seedUser(t, st, "alice")
	client := seedClient(t, st, user.ID, "John")

	loan, err := svc.CreateLoan(ctx, user.ID, CreateLoanInput{
		ClientID:         client.ID,
		Principal:        dec("100"),
		TotalAmount:      dec("120"),
		InstallmentCount: 1,
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, svc.PayInstallment(ctx, user.ID, loan.Installments[0].ID, PayInstallmentInput{
		Amount: dec("120"),
		Type:   PaymentTypeFull,
	}))

	stats, err := svc.GetClientStats(ctx, user.ID, client.ID)
	require.NoError(t, err)
	require.True(t, stats.TotalDebt.IsZero())
	require.Equal(t, 0, stats.ActiveLoansCount)
}
