package mocks

import (
	"context"
	"sync"

	"github.com/iho/goreporte/internal/domain"
)

// MemoryReportSource is an in-memory implementation of usecase.ReportSource.
type MemoryReportSource struct {
	mu       sync.RWMutex
	payloads map[string]*domain.RawReportPayload
	calls    int

	FetchReportFunc func(ctx context.Context, username, directorio string) (*domain.RawReportPayload, error)
}

func NewMemoryReportSource() *MemoryReportSource {
	return &MemoryReportSource{
		payloads: make(map[string]*domain.RawReportPayload),
	}
}

// Put stores the invoices of a user and period. The source total is the sum
// of the amounts unless the payload already carries one.
func (m *MemoryReportSource) Put(username, directorio string, invoices ...domain.Invoice) *domain.RawReportPayload {
	payload := &domain.RawReportPayload{
		Username:     username,
		Directorio:   directorio,
		InvoiceCount: len(invoices),
		Invoices:     invoices,
	}
	total := domain.Reconcile(username, directorio, invoices, domain.ParseAdvance("")).Total()
	payload.SourceTotal = &total

	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[username+"\x00"+directorio] = payload
	return payload
}

func (m *MemoryReportSource) FetchReport(ctx context.Context, username, directorio string) (*domain.RawReportPayload, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.FetchReportFunc != nil {
		return m.FetchReportFunc(ctx, username, directorio)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payloads[username+"\x00"+directorio]; ok {
		return p, nil
	}
	return nil, domain.ErrReportNotFound
}

// Calls returns the number of FetchReport invocations.
func (m *MemoryReportSource) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// MemoryUserRepository is an in-memory implementation of usecase.UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc        func(ctx context.Context, user *domain.User) error
	GetByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}
