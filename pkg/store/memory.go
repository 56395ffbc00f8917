package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/hkloans/loantrack/pkg/models"
)

// MemoryStore is a map-backed Storage implementation used by tests and local
// development. It is not safe for concurrent use.
type MemoryStore struct {
	users        map[uuid.UUID]models.User
	tokens       map[string]models.APIToken
	clients      map[uuid.UUID]models.Client
	partners     map[uuid.UUID]models.Partner
	loans        map[uuid.UUID]models.Loan
	installments map[uuid.UUID]models.Installment
	transactions map[uuid.UUID]models.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]models.User),
		tokens:       make(map[string]models.APIToken),
		clients:      make(map[uuid.UUID]models.Client),
		partners:     make(map[uuid.UUID]models.Partner),
		loans:        make(map[uuid.UUID]models.Loan),
		installments: make(map[uuid.UUID]models.Installment),
		transactions: make(map[uuid.UUID]models.Transaction),
	}
}

// Tx snapshots the maps and restores them if fn fails, so a failing operation
// leaves no partial writes behind.
func (m *MemoryStore) Tx(ctx context.Context, fn func(Storage) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *MemoryStore) snapshot() *MemoryStore {
	return &MemoryStore{
		users:        cloneMap(m.users),
		tokens:       cloneMap(m.tokens),
		clients:      cloneMap(m.clients),
		partners:     cloneMap(m.partners),
		loans:        cloneMap(m.loans),
		installments: cloneMap(m.installments),
		transactions: cloneMap(m.transactions),
	}
}

func (m *MemoryStore) restore(snap *MemoryStore) {
	m.users = snap.users
	m.tokens = snap.tokens
	m.clients = snap.clients
	m.partners = snap.partners
	m.loans = snap.loans
	m.installments = snap.installments
	m.transactions = snap.transactions
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// --- users ---

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("username %q: %w", user.Username, models.ErrConflict)
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user: %w", models.ErrNotFound)
}

func (m *MemoryStore) CreateAPIToken(ctx context.Context, token *models.APIToken) error {
	m.tokens[token.TokenHash] = *token
	return nil
}

func (m *MemoryStore) GetUserByTokenHash(ctx context.Context, hash string) (*models.User, error) {
	token, ok := m.tokens[hash]
	if !ok {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	user, ok := m.users[token.UserID]
	if !ok {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	u := user
	return &u, nil
}

// --- clients ---

func (m *MemoryStore) CreateClient(ctx context.Context, client *models.Client) error {
	if err := m.checkClientCPF(client); err != nil {
		return err
	}
	m.clients[client.ID] = *client
	return nil
}

func (m *MemoryStore) checkClientCPF(client *models.Client) error {
	if client.CPF == nil {
		return nil
	}
	for _, c := range m.clients {
		if c.ID != client.ID && c.UserID == client.UserID && c.CPF != nil && *c.CPF == *client.CPF {
			return fmt.Errorf("client cpf already registered: %w", models.ErrConflict)
		}
	}
	return nil
}

func (m *MemoryStore) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, models.ErrNotFound)
	}
	client := c
	return &client, nil
}

func (m *MemoryStore) UpdateClient(ctx context.Context, client *models.Client) error {
	if _, ok := m.clients[client.ID]; !ok {
		return fmt.Errorf("client: %w", models.ErrNotFound)
	}
	if err := m.checkClientCPF(client); err != nil {
		return err
	}
	m.clients[client.ID] = *client
	return nil
}

func (m *MemoryStore) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.clients[id]; !ok {
		return fmt.Errorf("client: %w", models.ErrNotFound)
	}
	for loanID, loan := range m.loans {
		if loan.ClientID != id {
			continue
		}
		for instID, inst := range m.installments {
			if inst.LoanID == loanID {
				delete(m.installments, instID)
			}
		}
		delete(m.loans, loanID)
	}
	delete(m.clients, id)
	return nil
}

func (m *MemoryStore) ListClientsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Client, error) {
	var clients []*models.Client
	for _, c := range m.clients {
		if c.UserID == userID {
			client := c
			clients = append(clients, &client)
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

// --- partners ---

func (m *MemoryStore) CreatePartner(ctx context.Context, partner *models.Partner) error {
	m.partners[partner.ID] = *partner
	return nil
}

func (m *MemoryStore) GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	p, ok := m.partners[id]
	if !ok {
		return nil, fmt.Errorf("partner %s: %w", id, models.ErrNotFound)
	}
	partner := p
	return &partner, nil
}

func (m *MemoryStore) DeletePartner(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.partners[id]; !ok {
		return fmt.Errorf("partner: %w", models.ErrNotFound)
	}
	for loanID, loan := range m.loans {
		if loan.PartnerID != nil && *loan.PartnerID == id {
			loan.PartnerID = nil
			m.loans[loanID] = loan
		}
	}
	delete(m.partners, id)
	return nil
}

func (m *MemoryStore) ListPartnersByUser(ctx context.Context, userID uuid.UUID) ([]*models.Partner, error) {
	var partners []*models.Partner
	for _, p := range m.partners {
		if p.UserID == userID {
			partner := p
			partners = append(partners, &partner)
		}
	}
	sort.Slice(partners, func(i, j int) bool { return partners[i].Name < partners[j].Name })
	return partners, nil
}

// --- loans ---

func (m *MemoryStore) CreateLoan(ctx context.Context, loan *models.Loan) error {
	m.loans[loan.ID] = *loan
	return nil
}

func (m *MemoryStore) GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	l, ok := m.loans[id]
	if !ok {
		return nil, fmt.Errorf("loan %s: %w", id, models.ErrNotFound)
	}
	loan := l
	return &loan, nil
}

func (m *MemoryStore) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	if _, ok := m.loans[loan.ID]; !ok {
		return fmt.Errorf("loan: %w", models.ErrNotFound)
	}
	m.loans[loan.ID] = *loan
	return nil
}

func (m *MemoryStore) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.loans[id]; !ok {
		return fmt.Errorf("loan: %w", models.ErrNotFound)
	}
	for instID, inst := range m.installments {
		if inst.LoanID == id {
			delete(m.installments, instID)
		}
	}
	delete(m.loans, id)
	return nil
}

func (m *MemoryStore) ListLoansByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Loan, error) {
	var loans []*models.Loan
	for _, l := range m.loans {
		if l.ClientID == clientID {
			loan := l
			loans = append(loans, &loan)
		}
	}
	sortLoansNewestFirst(loans)
	return loans, nil
}

func (m *MemoryStore) ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]*models.Loan, error) {
	var loans []*models.Loan
	for _, l := range m.loans {
		client, ok := m.clients[l.ClientID]
		if ok && client.UserID == userID {
			loan := l
			loans = append(loans, &loan)
		}
	}
	sortLoansNewestFirst(loans)
	return loans, nil
}

func sortLoansNewestFirst(loans []*models.Loan) {
	sort.Slice(loans, func(i, j int) bool {
		if loans[i].CreatedAt.Equal(loans[j].CreatedAt) {
			return loans[i].ID.String() < loans[j].ID.String()
		}
		return loans[i].CreatedAt.After(loans[j].CreatedAt)
	})
}

// --- installments ---

func (m *MemoryStore) CreateInstallment(ctx context.Context, installment *models.Installment) error {
	for _, i := range m.installments {
		if i.LoanID == installment.LoanID && i.Number == installment.Number {
			return fmt.Errorf("installment number %d on loan %s: %w",
				installment.Number, installment.LoanID, models.ErrConflict)
		}
	}
	m.installments[installment.ID] = *installment
	return nil
}

func (m *MemoryStore) GetInstallment(ctx context.Context, id uuid.UUID) (*models.Installment, error) {
	i, ok := m.installments[id]
	if !ok {
		return nil, fmt.Errorf("installment %s: %w", id, models.ErrNotFound)
	}
	inst := i
	return &inst, nil
}

func (m *MemoryStore) UpdateInstallment(ctx context.Context, installment *models.Installment) error {
	if _, ok := m.installments[installment.ID]; !ok {
		return fmt.Errorf("installment: %w", models.ErrNotFound)
	}
	m.installments[installment.ID] = *installment
	return nil
}

func (m *MemoryStore) DeleteInstallment(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.installments[id]; !ok {
		return fmt.Errorf("installment: %w", models.ErrNotFound)
	}
	delete(m.installments, id)
	return nil
}

func (m *MemoryStore) ListInstallmentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*models.Installment, error) {
	var installments []*models.Installment
	for _, i := range m.installments {
		if i.LoanID == loanID {
			inst := i
			installments = append(installments, &inst)
		}
	}
	sort.Slice(installments, func(i, j int) bool {
		return installments[i].Number < installments[j].Number
	})
	return installments, nil
}

// --- transactions ---

func (m *MemoryStore) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	m.transactions[transaction.ID] = *transaction
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	t, ok := m.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	tx := t
	return &tx, nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.transactions[id]; !ok {
		return fmt.Errorf("transaction: %w", models.ErrNotFound)
	}
	delete(m.transactions, id)
	return nil
}

func (m *MemoryStore) ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID {
			tx := t
			transactions = append(transactions, &tx)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].ID.String() < transactions[j].ID.String()
		}
		return transactions[i].Date.After(transactions[j].Date)
	})
	return transactions, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
