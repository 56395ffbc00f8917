package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// SQLiteStore manages the database connection and operations for SQLite.
type SQLiteStore struct {
	db *sql.DB
	q  querier
}

// querier is satisfied by both *sql.DB and *sql.Tx so the same statement code
// runs inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteStore creates a new SQLiteStore and initializes the database.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// Manually enable foreign keys and WAL mode
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db, q: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the database tables if they don't already exist.
// We use TEXT for decimal fields in SQLite to ensure no precision is lost.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS api_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		token_hash TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		whatsapp TEXT,
		cpf TEXT,
		rg TEXT,
		address TEXT,
		mother_name TEXT,
		pix TEXT,
		bank TEXT,
		observation TEXT,
		rating INTEGER NOT NULL DEFAULT 5,
		created_at DATETIME NOT NULL,
		UNIQUE(user_id, cpf)
	);
	CREATE TABLE IF NOT EXISTS partners (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		pix_key TEXT,
		commission_rate TEXT NOT NULL DEFAULT '0',
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id),
		partner_id TEXT,
		original_loan_id TEXT,
		amount TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS installments (
		id TEXT PRIMARY KEY,
		loan_id TEXT NOT NULL REFERENCES loans(id),
		number INTEGER NOT NULL,
		amount TEXT NOT NULL,
		due_date DATETIME NOT NULL,
		status TEXT NOT NULL,
		paid_amount TEXT,
		paid_date DATETIME,
		UNIQUE(loan_id, number)
	);
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT NOT NULL,
		date DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Tx runs fn inside a single database transaction. A nested call joins the
// transaction already in flight.
func (s *SQLiteStore) Tx(ctx context.Context, fn func(Storage) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&SQLiteStore{db: s.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// isUniqueViolation checks if the error indicates a unique constraint breach.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint
	}
	return false
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullUUID(v *uuid.UUID) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func uuidPtr(v sql.NullString) (*uuid.UUID, error) {
	if !v.Valid {
		return nil, nil
	}
	id, err := uuid.Parse(v.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// --- users ---

func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO users (id, username, name, created_at) VALUES (?, ?, ?, ?)`,
		user.ID.String(), user.Username, user.Name, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", user.Username, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, username, name, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *SQLiteStore) CreateAPIToken(ctx context.Context, token *models.APIToken) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO api_tokens (id, user_id, token_hash, created_at) VALUES (?, ?, ?, ?)`,
		token.ID.String(), token.UserID.String(), token.TokenHash, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create api token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByTokenHash(ctx context.Context, hash string) (*models.User, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.name, u.created_at
		FROM users u JOIN api_tokens t ON t.user_id = u.id
		WHERE t.token_hash = ?`, hash)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var idStr string
	err := row.Scan(&idStr, &u.Username, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.ID = uuid.MustParse(idStr)
	return &u, nil
}

// --- clients ---

const clientColumns = `id, user_id, name, whatsapp, cpf, rg, address, mother_name, pix, bank, observation, rating, created_at`

func (s *SQLiteStore) CreateClient(ctx context.Context, client *models.Client) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID.String(), client.UserID.String(), client.Name,
		nullString(client.Whatsapp), nullString(client.CPF), nullString(client.RG),
		nullString(client.Address), nullString(client.MotherName), nullString(client.Pix),
		nullString(client.Bank), nullString(client.Observation), client.Rating, client.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("client cpf already registered: %w", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id.String())
	client, err := scanClient(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func scanClient(scan func(...any) error) (*models.Client, error) {
	var c models.Client
	var idStr, userIDStr string
	var whatsapp, cpf, rg, address, motherName, pix, bank, observation sql.NullString
	err := scan(&idStr, &userIDStr, &c.Name, &whatsapp, &cpf, &rg,
		&address, &motherName, &pix, &bank, &observation, &c.Rating, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = uuid.MustParse(idStr)
	c.UserID = uuid.MustParse(userIDStr)
	c.Whatsapp = stringPtr(whatsapp)
	c.CPF = stringPtr(cpf)
	c.RG = stringPtr(rg)
	c.Address = stringPtr(address)
	c.MotherName = stringPtr(motherName)
	c.Pix = stringPtr(pix)
	c.Bank = stringPtr(bank)
	c.Observation = stringPtr(observation)
	return &c, nil
}

func (s *SQLiteStore) UpdateClient(ctx context.Context, client *models.Client) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE clients SET name = ?, whatsapp = ?, cpf = ?, rg = ?, address = ?,
			mother_name = ?, pix = ?, bank = ?, observation = ?, rating = ?
		WHERE id = ?`,
		client.Name, nullString(client.Whatsapp), nullString(client.CPF), nullString(client.RG),
		nullString(client.Address), nullString(client.MotherName), nullString(client.Pix),
		nullString(client.Bank), nullString(client.Observation), client.Rating,
		client.ID.String(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("client cpf already registered: %w", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return mustAffect(result, "client")
}

// DeleteClient removes the client and cascades to its loans and installments.
func (s *SQLiteStore) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.Tx(ctx, func(st Storage) error {
		q := st.(*SQLiteStore).q
		if _, err := q.ExecContext(ctx,
			`DELETE FROM installments WHERE loan_id IN (SELECT id FROM loans WHERE client_id = ?)`,
			id.String()); err != nil {
			return fmt.Errorf("failed to delete client installments: %w", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM loans WHERE client_id = ?`, id.String()); err != nil {
			return fmt.Errorf("failed to delete client loans: %w", err)
		}
		result, err := q.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id.String())
		if err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		return mustAffect(result, "client")
	})
}

func (s *SQLiteStore) ListClientsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Client, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE user_id = ? ORDER BY name ASC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows.Scan)
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

func (s *SQLiteStore) CreatePartner(ctx context.Context, partner *models.Partner) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO partners (id, user_id, name, pix_key, commission_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		partner.ID.String(), partner.UserID.String(), partner.Name,
		nullString(partner.PixKey), partner.CommissionRate, partner.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create partner: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	var p models.Partner
	var idStr, userIDStr string
	var pixKey sql.NullString
	row := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, name, pix_key, commission_rate, created_at FROM partners WHERE id = ?`,
		id.String())
	err := row.Scan(&idStr, &userIDStr, &p.Name, &pixKey, &p.CommissionRate, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("partner %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	p.ID = uuid.MustParse(idStr)
	p.UserID = uuid.MustParse(userIDStr)
	p.PixKey = stringPtr(pixKey)
	return &p, nil
}

// DeletePartner clears the weak reference on loans before removing the row.
func (s *SQLiteStore) DeletePartner(ctx context.Context, id uuid.UUID) error {
	return s.Tx(ctx, func(st Storage) error {
		q := st.(*SQLiteStore).q
		if _, err := q.ExecContext(ctx,
			`UPDATE loans SET partner_id = NULL WHERE partner_id = ?`, id.String()); err != nil {
			return fmt.Errorf("failed to detach partner loans: %w", err)
		}
		result, err := q.ExecContext(ctx, `DELETE FROM partners WHERE id = ?`, id.String())
		if err != nil {
			return fmt.Errorf("failed to delete partner: %w", err)
		}
		return mustAffect(result, "partner")
	})
}

func (s *SQLiteStore) ListPartnersByUser(ctx context.Context, userID uuid.UUID) ([]*models.Partner, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, user_id, name, pix_key, commission_rate, created_at
		FROM partners WHERE user_id = ? ORDER BY name ASC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []*models.Partner
	for rows.Next() {
		var p models.Partner
		var idStr, userIDStr string
		var pixKey sql.NullString
		if err := rows.Scan(&idStr, &userIDStr, &p.Name, &pixKey, &p.CommissionRate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner row: %w", err)
		}
		p.ID = uuid.MustParse(idStr)
		p.UserID = uuid.MustParse(userIDStr)
		p.PixKey = stringPtr(pixKey)
		partners = append(partners, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return partners, nil
}

// --- loans ---

const loanColumns = `id, client_id, partner_id, original_loan_id, amount, total_amount, interest_rate, start_date, status, created_at`

func (s *SQLiteStore) CreateLoan(ctx context.Context, loan *models.Loan) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO loans (`+loanColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loan.ID.String(), loan.ClientID.String(), nullUUID(loan.PartnerID), nullUUID(loan.OriginalLoanID),
		loan.Amount, loan.TotalAmount, loan.InterestRate, loan.StartDate, string(loan.Status), loan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = ?`, id.String())
	loan, err := scanLoan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("loan %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}

func scanLoan(scan func(...any) error) (*models.Loan, error) {
	var l models.Loan
	var idStr, clientIDStr, status string
	var partnerID, originalLoanID sql.NullString
	err := scan(&idStr, &clientIDStr, &partnerID, &originalLoanID,
		&l.Amount, &l.TotalAmount, &l.InterestRate, &l.StartDate, &status, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.ID = uuid.MustParse(idStr)
	l.ClientID = uuid.MustParse(clientIDStr)
	l.Status = models.LoanStatus(status)
	if l.PartnerID, err = uuidPtr(partnerID); err != nil {
		return nil, err
	}
	if l.OriginalLoanID, err = uuidPtr(originalLoanID); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *SQLiteStore) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE loans SET client_id = ?, partner_id = ?, original_loan_id = ?, amount = ?,
			total_amount = ?, interest_rate = ?, start_date = ?, status = ?
		WHERE id = ?`,
		loan.ClientID.String(), nullUUID(loan.PartnerID), nullUUID(loan.OriginalLoanID),
		loan.Amount, loan.TotalAmount, loan.InterestRate, loan.StartDate, string(loan.Status),
		loan.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	return mustAffect(result, "loan")
}

// DeleteLoan removes a loan and its installments within a transaction.
func (s *SQLiteStore) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	return s.Tx(ctx, func(st Storage) error {
		q := st.(*SQLiteStore).q
		if _, err := q.ExecContext(ctx, `DELETE FROM installments WHERE loan_id = ?`, id.String()); err != nil {
			return fmt.Errorf("failed to delete loan installments: %w", err)
		}
		result, err := q.ExecContext(ctx, `DELETE FROM loans WHERE id = ?`, id.String())
		if err != nil {
			return fmt.Errorf("failed to delete loan: %w", err)
		}
		return mustAffect(result, "loan")
	})
}

func (s *SQLiteStore) ListLoansByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Loan, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE client_id = ? ORDER BY created_at DESC`, clientID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()
	return collectLoans(rows)
}

func (s *SQLiteStore) ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]*models.Loan, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT l.id, l.client_id, l.partner_id, l.original_loan_id, l.amount, l.total_amount,
			l.interest_rate, l.start_date, l.status, l.created_at
		FROM loans l JOIN clients c ON c.id = l.client_id
		WHERE c.user_id = ? ORDER BY l.created_at DESC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()
	return collectLoans(rows)
}

func collectLoans(rows *sql.Rows) ([]*models.Loan, error) {
	var loans []*models.Loan
	for rows.Next() {
		l, err := scanLoan(rows.Scan)
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

const installmentColumns = `id, loan_id, number, amount, due_date, status, paid_amount, paid_date`

func (s *SQLiteStore) CreateInstallment(ctx context.Context, installment *models.Installment) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO installments (`+installmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		installment.ID.String(), installment.LoanID.String(), installment.Number,
		installment.Amount, installment.DueDate, string(installment.Status),
		installment.PaidAmount, nullTime(installment.PaidDate),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("installment number %d on loan %s: %w",
			installment.Number, installment.LoanID, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create installment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetInstallment(ctx context.Context, id uuid.UUID) (*models.Installment, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+installmentColumns+` FROM installments WHERE id = ?`, id.String())
	inst, err := scanInstallment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("installment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get installment: %w", err)
	}
	return inst, nil
}

func scanInstallment(scan func(...any) error) (*models.Installment, error) {
	var i models.Installment
	var idStr, loanIDStr, status string
	var paidDate sql.NullTime
	err := scan(&idStr, &loanIDStr, &i.Number, &i.Amount, &i.DueDate, &status, &i.PaidAmount, &paidDate)
	if err != nil {
		return nil, err
	}
	i.ID = uuid.MustParse(idStr)
	i.LoanID = uuid.MustParse(loanIDStr)
	i.Status = models.InstallmentStatus(status)
	i.PaidDate = timePtr(paidDate)
	return &i, nil
}

func (s *SQLiteStore) UpdateInstallment(ctx context.Context, installment *models.Installment) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE installments SET number = ?, amount = ?, due_date = ?, status = ?,
			paid_amount = ?, paid_date = ?
		WHERE id = ?`,
		installment.Number, installment.Amount, installment.DueDate, string(installment.Status),
		installment.PaidAmount, nullTime(installment.PaidDate),
		installment.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}
	return mustAffect(result, "installment")
}

func (s *SQLiteStore) DeleteInstallment(ctx context.Context, id uuid.UUID) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM installments WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete installment: %w", err)
	}
	return mustAffect(result, "installment")
}

func (s *SQLiteStore) ListInstallmentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*models.Installment, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+installmentColumns+` FROM installments WHERE loan_id = ? ORDER BY number ASC`,
		loanID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	var installments []*models.Installment
	for rows.Next() {
		i, err := scanInstallment(rows.Scan)
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

func (s *SQLiteStore) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, description, amount, category, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		transaction.ID.String(), transaction.UserID.String(), string(transaction.Type),
		transaction.Description, transaction.Amount, transaction.Category, transaction.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	var idStr, userIDStr, txType string
	row := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, type, description, amount, category, date FROM transactions WHERE id = ?`,
		id.String())
	err := row.Scan(&idStr, &userIDStr, &txType, &t.Description, &t.Amount, &t.Category, &t.Date)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	t.ID = uuid.MustParse(idStr)
	t.UserID = uuid.MustParse(userIDStr)
	t.Type = models.TransactionType(txType)
	return &t, nil
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return mustAffect(result, "transaction")
}

func (s *SQLiteStore) ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, user_id, type, description, amount, category, date
		FROM transactions WHERE user_id = ? ORDER BY date DESC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		var idStr, userIDStr, txType string
		if err := rows.Scan(&idStr, &userIDStr, &txType, &t.Description, &t.Amount, &t.Category, &t.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		t.ID = uuid.MustParse(idStr)
		t.UserID = uuid.MustParse(userIDStr)
		t.Type = models.TransactionType(txType)
		transactions = append(transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return transactions, nil
}

func mustAffect(result sql.Result, entity string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", entity, models.ErrNotFound)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
