package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
	"github.com/shopspring/decimal"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConnectionInfo carries the connection parameters for Postgres.
type PostgresConnectionInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
}

// PostgresStore implements Storage on top of a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    pgxQuerier
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresStore connects to Postgres and initializes the schema.
func NewPostgresStore(ctx context.Context, info PostgresConnectionInfo) (*PostgresStore, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		info.Host, info.Port, info.User, info.Password, info.DB, info.SSLMode,
	)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &PostgresStore{pool: pool, q: pool}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id uuid PRIMARY KEY,
		username text NOT NULL UNIQUE,
		name text NOT NULL,
		created_at timestamptz NOT NULL
	);
	CREATE TABLE IF NOT EXISTS api_tokens (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL REFERENCES users(id),
		token_hash text NOT NULL UNIQUE,
		created_at timestamptz NOT NULL
	);
	CREATE TABLE IF NOT EXISTS clients (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL REFERENCES users(id),
		name text NOT NULL,
		whatsapp text,
		cpf text,
		rg text,
		address text,
		mother_name text,
		pix text,
		bank text,
		observation text,
		rating integer NOT NULL DEFAULT 5,
		created_at timestamptz NOT NULL,
		UNIQUE(user_id, cpf)
	);
	CREATE TABLE IF NOT EXISTS partners (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL REFERENCES users(id),
		name text NOT NULL,
		pix_key text,
		commission_rate numeric NOT NULL DEFAULT 0,
		created_at timestamptz NOT NULL
	);
	CREATE TABLE IF NOT EXISTS loans (
		id uuid PRIMARY KEY,
		client_id uuid NOT NULL REFERENCES clients(id),
		partner_id uuid,
		original_loan_id uuid,
		amount numeric NOT NULL,
		total_amount numeric NOT NULL,
		interest_rate numeric NOT NULL,
		start_date timestamptz NOT NULL,
		status text NOT NULL,
		created_at timestamptz NOT NULL
	);
	CREATE TABLE IF NOT EXISTS installments (
		id uuid PRIMARY KEY,
		loan_id uuid NOT NULL REFERENCES loans(id),
		number integer NOT NULL,
		amount numeric NOT NULL,
		due_date timestamptz NOT NULL,
		status text NOT NULL,
		paid_amount numeric,
		paid_date timestamptz,
		UNIQUE(loan_id, number)
	);
	CREATE TABLE IF NOT EXISTS transactions (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL REFERENCES users(id),
		type text NOT NULL,
		description text NOT NULL,
		amount numeric NOT NULL,
		category text NOT NULL,
		date timestamptz NOT NULL
	);
	`
	_, err := s.q.Exec(ctx, schema)
	return err
}

// Tx runs fn inside a single database transaction. A nested call joins the
// transaction already in flight.
func (s *PostgresStore) Tx(ctx context.Context, fn func(Storage) error) error {
	if _, ok := s.q.(pgx.Tx); ok {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&PostgresStore{pool: s.pool, q: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func decFromString(v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse numeric %q: %w", v, err)
	}
	return d, nil
}

func nullDecString(v decimal.NullDecimal) *string {
	if !v.Valid {
		return nil
	}
	s := v.Decimal.String()
	return &s
}

func uuidString(v *uuid.UUID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

// --- users ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO users (id, username, name, created_at) VALUES ($1::uuid, $2, $3, $4)`,
		user.ID.String(), user.Username, user.Name, user.CreatedAt,
	)
	if isPgUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", user.Username, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.q.QueryRow(ctx,
		`SELECT id::text, username, name, created_at FROM users WHERE username = $1`, username)
	return s.scanUser(row)
}

func (s *PostgresStore) CreateAPIToken(ctx context.Context, token *models.APIToken) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO api_tokens (id, user_id, token_hash, created_at) VALUES ($1::uuid, $2::uuid, $3, $4)`,
		token.ID.String(), token.UserID.String(), token.TokenHash, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create api token: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByTokenHash(ctx context.Context, hash string) (*models.User, error) {
	row := s.q.QueryRow(ctx,
		`SELECT u.id::text, u.username, u.name, u.created_at
		FROM users u JOIN api_tokens t ON t.user_id = u.id
		WHERE t.token_hash = $1`, hash)
	return s.scanUser(row)
}

func (s *PostgresStore) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var idStr string
	err := row.Scan(&idStr, &u.Username, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.ID = uuid.MustParse(idStr)
	return &u, nil
}

// --- clients ---

const pgClientColumns = `id::text, user_id::text, name, whatsapp, cpf, rg, address, mother_name, pix, bank, observation, rating, created_at`

func (s *PostgresStore) CreateClient(ctx context.Context, client *models.Client) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO clients (id, user_id, name, whatsapp, cpf, rg, address, mother_name, pix, bank, observation, rating, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		client.ID.String(), client.UserID.String(), client.Name,
		client.Whatsapp, client.CPF, client.RG, client.Address, client.MotherName,
		client.Pix, client.Bank, client.Observation, client.Rating, client.CreatedAt,
	)
	if isPgUniqueViolation(err) {
		return fmt.Errorf("client cpf already registered: %w", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+pgClientColumns+` FROM clients WHERE id = $1::uuid`, id.String())
	client, err := scanPgClient(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func scanPgClient(scan func(...any) error) (*models.Client, error) {
	var c models.Client
	var idStr, userIDStr string
	err := scan(&idStr, &userIDStr, &c.Name, &c.Whatsapp, &c.CPF, &c.RG,
		&c.Address, &c.MotherName, &c.Pix, &c.Bank, &c.Observation, &c.Rating, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = uuid.MustParse(idStr)
	c.UserID = uuid.MustParse(userIDStr)
	return &c, nil
}

func (s *PostgresStore) UpdateClient(ctx context.Context, client *models.Client) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE clients SET name = $1, whatsapp = $2, cpf = $3, rg = $4, address = $5,
			mother_name = $6, pix = $7, bank = $8, observation = $9, rating = $10
		WHERE id = $11::uuid`,
		client.Name, client.Whatsapp, client.CPF, client.RG, client.Address,
		client.MotherName, client.Pix, client.Bank, client.Observation, client.Rating,
		client.ID.String(),
	)
	if isPgUniqueViolation(err) {
		return fmt.Errorf("client cpf already registered: %w", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client: %w", models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.Tx(ctx, func(st Storage) error {
		q := st.(*PostgresStore).q
		if _, err := q.Exec(ctx,
			`DELETE FROM installments WHERE loan_id IN (SELECT id FROM loans WHERE client_id = $1::uuid)`,
			id.String()); err != nil {
			return fmt.Errorf("failed to delete client installments: %w", err)
		}
		if _, err := q.Exec(ctx, `DELETE FROM loans WHERE client_id = $1::uuid`, id.String()); err != nil {
			return fmt.Errorf("failed to delete client loans: %w", err)
		}
		tag, err := q.Exec(ctx, `DELETE FROM clients WHERE id = $1::uuid`, id.String())
		if err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("client: %w", models.ErrNotFound)
		}
		return nil
	})
}

func (s *PostgresStore) ListClientsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Client, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+pgClientColumns+` FROM clients WHERE user_id = $1::uuid ORDER BY name ASC`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanPgClient(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return clients, nil
}

// --- partners ---

func (s *PostgresStore) CreatePartner(ctx context.Context, partner *models.Partner) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO partners (id, user_id, name, pix_key, commission_rate, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5::numeric, $6)`,
		partner.ID.String(), partner.UserID.String(), partner.Name,
		partner.PixKey, partner.CommissionRate.String(), partner.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create partner: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	var p models.Partner
	var idStr, userIDStr, rate string
	row := s.q.QueryRow(ctx,
		`SELECT id::text, user_id::text, name, pix_key, commission_rate::text, created_at
		FROM partners WHERE id = $1::uuid`, id.String())
	err := row.Scan(&idStr, &userIDStr, &p.Name, &p.PixKey, &rate, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("partner %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	p.ID = uuid.MustParse(idStr)
	p.UserID = uuid.MustParse(userIDStr)
	if p.CommissionRate, err = decFromString(rate); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) DeletePartner(ctx context.Context, id uuid.UUID) error {
	return s.Tx(ctx, func(st Storage) error {
		q := st.(*PostgresStore).q
		if _, err := q.Exec(ctx,
			`UPDATE loans SET partner_id = NULL WHERE partner_id = $1::uuid`, id.String()); err != nil {
			return fmt.Errorf("failed to detach partner loans: %w", err)
		}
		tag, err := q.Exec(ctx, `DELETE FROM partners WHERE id = $1::uuid`, id.String())
		if err != nil {
			return fmt.Errorf("failed to delete partner: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("partner: %w", models.ErrNotFound)
		}
		return nil
	})
}

func (s *PostgresStore) ListPartnersByUser(ctx context.Context, userID uuid.UUID) ([]*models.Partner, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id::text, user_id::text, name, pix_key, commission_rate::text, created_at
		FROM partners WHERE user_id = $1::uuid ORDER BY name ASC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []*models.Partner
	for rows.Next() {
		var p models.Partner
		var idStr, userIDStr, rate string
		if err := rows.Scan(&idStr, &userIDStr, &p.Name, &p.PixKey, &rate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner row: %w", err)
		}
		p.ID = uuid.MustParse(idStr)
		p.UserID = uuid.MustParse(userIDStr)
		if p.CommissionRate, err = decFromString(rate); err != nil {
			return nil, err
		}
		partners = append(partners, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return partners, nil
}

// --- loans ---

const pgLoanColumns = `id::text, client_id::text, partner_id::text, original_loan_id::text,
	amount::text, total_amount::text, interest_rate::text, start_date, status, created_at`

func (s *PostgresStore) CreateLoan(ctx context.Context, loan *models.Loan) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO loans (id, client_id, partner_id, original_loan_id, amount, total_amount, interest_rate, start_date, status, created_at)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4::uuid, $5::numeric, $6::numeric, $7::numeric, $8, $9, $10)`,
		loan.ID.String(), loan.ClientID.String(), uuidString(loan.PartnerID), uuidString(loan.OriginalLoanID),
		loan.Amount.String(), loan.TotalAmount.String(), loan.InterestRate.String(),
		loan.StartDate, string(loan.Status), loan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+pgLoanColumns+` FROM loans WHERE id = $1::uuid`, id.String())
	loan, err := scanPgLoan(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("loan %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}

func scanPgLoan(scan func(...any) error) (*models.Loan, error) {
	var l models.Loan
	var idStr, clientIDStr, status string
	var partnerID, originalLoanID *string
	var amount, total, rate string
	err := scan(&idStr, &clientIDStr, &partnerID, &originalLoanID,
		&amount, &total, &rate, &l.StartDate, &status, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.ID = uuid.MustParse(idStr)
	l.ClientID = uuid.MustParse(clientIDStr)
	l.Status = models.LoanStatus(status)
	if partnerID != nil {
		id := uuid.MustParse(*partnerID)
		l.PartnerID = &id
	}
	if originalLoanID != nil {
		id := uuid.MustParse(*originalLoanID)
		l.OriginalLoanID = &id
	}
	if l.Amount, err = decFromString(amount); err != nil {
		return nil, err
	}
	if l.TotalAmount, err = decFromString(total); err != nil {
		return nil, err
	}
	if l.InterestRate, err = decFromString(rate); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *PostgresStore) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE loans SET client_id = $1::uuid, partner_id = $2::uuid, original_loan_id = $3::uuid,
			amount = $4::numeric, total_amount = $5::numeric, interest_rate = $6::numeric,
			start_date = $7, status = $8
		WHERE id = $9::uuid`,
		loan.ClientID.String(), uuidString(loan.PartnerID), uuidString(loan.OriginalLoanID),
		loan.Amount.String(), loan.TotalAmount.String(), loan.InterestRate.String(),
		loan.StartDate, string(loan.Status), loan.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan: %w", models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	return s.Tx(ctx, func(st Storage) error {
		q := st.(*PostgresStore).q
		if _, err := q.Exec(ctx, `DELETE FROM installments WHERE loan_id = $1::uuid`, id.String()); err != nil {
			return fmt.Errorf("failed to delete loan installments: %w", err)
		}
		tag, err := q.Exec(ctx, `DELETE FROM loans WHERE id = $1::uuid`, id.String())
		if err != nil {
			return fmt.Errorf("failed to delete loan: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("loan: %w", models.ErrNotFound)
		}
		return nil
	})
}

func (s *PostgresStore) ListLoansByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Loan, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+pgLoanColumns+` FROM loans WHERE client_id = $1::uuid ORDER BY created_at DESC`,
		clientID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()
	return collectPgLoans(rows)
}

func (s *PostgresStore) ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]*models.Loan, error) {
	rows, err := s.q.Query(ctx,
		`SELECT l.id::text, l.client_id::text, l.partner_id::text, l.original_loan_id::text,
			l.amount::text, l.total_amount::text, l.interest_rate::text, l.start_date, l.status, l.created_at
		FROM loans l JOIN clients c ON c.id = l.client_id
		WHERE c.user_id = $1::uuid ORDER BY l.created_at DESC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()
	return collectPgLoans(rows)
}

func collectPgLoans(rows pgx.Rows) ([]*models.Loan, error) {
	var loans []*models.Loan
	for rows.Next() {
		l, err := scanPgLoan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return loans, nil
}

// --- installments ---

const pgInstallmentColumns = `id::text, loan_id::text, number, amount::text, due_date, status, paid_amount::text, paid_date`

func (s *PostgresStore) CreateInstallment(ctx context.Context, installment *models.Installment) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO installments (id, loan_id, number, amount, due_date, status, paid_amount, paid_date)
		VALUES ($1::uuid, $2::uuid, $3, $4::numeric, $5, $6, $7::numeric, $8)`,
		installment.ID.String(), installment.LoanID.String(), installment.Number,
		installment.Amount.String(), installment.DueDate, string(installment.Status),
		nullDecString(installment.PaidAmount), installment.PaidDate,
	)
	if isPgUniqueViolation(err) {
		return fmt.Errorf("installment number %d on loan %s: %w",
			installment.Number, installment.LoanID, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create installment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetInstallment(ctx context.Context, id uuid.UUID) (*models.Installment, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+pgInstallmentColumns+` FROM installments WHERE id = $1::uuid`, id.String())
	inst, err := scanPgInstallment(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("installment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get installment: %w", err)
	}
	return inst, nil
}

func scanPgInstallment(scan func(...any) error) (*models.Installment, error) {
	var i models.Installment
	var idStr, loanIDStr, status string
	var amount string
	var paidAmount *string
	err := scan(&idStr, &loanIDStr, &i.Number, &amount, &i.DueDate, &status, &paidAmount, &i.PaidDate)
	if err != nil {
		return nil, err
	}
	i.ID = uuid.MustParse(idStr)
	i.LoanID = uuid.MustParse(loanIDStr)
	i.Status = models.InstallmentStatus(status)
	if i.Amount, err = decFromString(amount); err != nil {
		return nil, err
	}
	if paidAmount != nil {
		d, err := decFromString(*paidAmount)
		if err != nil {
			return nil, err
		}
		i.PaidAmount = decimal.NewNullDecimal(d)
	}
	return &i, nil
}

func (s *PostgresStore) UpdateInstallment(ctx context.Context, installment *models.Installment) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE installments SET number = $1, amount = $2::numeric, due_date = $3, status = $4,
			paid_amount = $5::numeric, paid_date = $6
		WHERE id = $7::uuid`,
		installment.Number, installment.Amount.String(), installment.DueDate, string(installment.Status),
		nullDecString(installment.PaidAmount), installment.PaidDate, installment.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("installment: %w", models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteInstallment(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM installments WHERE id = $1::uuid`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete installment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("installment: %w", models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListInstallmentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*models.Installment, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+pgInstallmentColumns+` FROM installments WHERE loan_id = $1::uuid ORDER BY number ASC`,
		loanID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	var installments []*models.Installment
	for rows.Next() {
		i, err := scanPgInstallment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment row: %w", err)
		}
		installments = append(installments, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return installments, nil
}

// --- transactions ---

func (s *PostgresStore) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO transactions (id, user_id, type, description, amount, category, date)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5::numeric, $6, $7)`,
		transaction.ID.String(), transaction.UserID.String(), string(transaction.Type),
		transaction.Description, transaction.Amount.String(), transaction.Category, transaction.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	var idStr, userIDStr, txType, amount string
	row := s.q.QueryRow(ctx,
		`SELECT id::text, user_id::text, type, description, amount::text, category, date
		FROM transactions WHERE id = $1::uuid`, id.String())
	err := row.Scan(&idStr, &userIDStr, &txType, &t.Description, &amount, &t.Category, &t.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	t.ID = uuid.MustParse(idStr)
	t.UserID = uuid.MustParse(userIDStr)
	t.Type = models.TransactionType(txType)
	if t.Amount, err = decFromString(amount); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1::uuid`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction: %w", models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id::text, user_id::text, type, description, amount::text, category, date
		FROM transactions WHERE user_id = $1::uuid ORDER BY date DESC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		var idStr, userIDStr, txType, amount string
		if err := rows.Scan(&idStr, &userIDStr, &txType, &t.Description, &amount, &t.Category, &t.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		t.ID = uuid.MustParse(idStr)
		t.UserID = uuid.MustParse(userIDStr)
		t.Type = models.TransactionType(txType)
		if t.Amount, err = decFromString(amount); err != nil {
			return nil, err
		}
		transactions = append(transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return transactions, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
