// internal/ledger/ledger.go
package ledger

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"mobipay-gateway/internal/domain"

	"github.com/shopspring/decimal"
)

// Store is the in-memory transaction ledger. All state lives in a map
// guarded by one RWMutex; entries survive only for the process lifetime.
// Callers must not hold network calls open across Store operations —
// build the outbound payload first, call the provider, then record.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.Transaction
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]*domain.Transaction),
	}
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Kind     domain.TransactionKind
	StatusIn []domain.TransactionStatus
}

// Page is clamped pagination: page and limit both floor at 1.
type Page struct {
	Page  int
	Limit int
}

const maxPageLimit = 100

// Clamp returns the pagination actually applied; handlers echo this
// back so callers see the effective page and limit.
func (p Page) Clamp() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

// Stats is a snapshot of ledger aggregates. TotalVolume is a gross sum
// over every record regardless of status, not settled volume.
type Stats struct {
	Total       int                            `json:"total"`
	Successful  int                            `json:"successful"`
	Failed      int                            `json:"failed"`
	Pending     int                            `json:"pending"`
	ByKind      map[domain.TransactionKind]int `json:"byKind"`
	TotalVolume decimal.Decimal                `json:"totalVolume"`
}

// Create inserts a new transaction. A replay with the same reference and
// an identical payload (kind, amount, phone, network code) returns the
// existing record unchanged with created=false; a conflicting payload
// fails with DuplicateReferenceError. The record is stored with status
// PENDING unless the caller set one.
func (s *Store) Create(tx *domain.Transaction) (*domain.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[tx.Reference]; ok {
		if existing.Kind == tx.Kind &&
			existing.Amount.Equal(tx.Amount) &&
			existing.PhoneNumber == tx.PhoneNumber &&
			existing.NetworkCode == tx.NetworkCode {
			out := *existing
			return &out, false, nil
		}
		return nil, false, &domain.DuplicateReferenceError{Reference: tx.Reference}
	}

	stored := *tx
	if stored.Status == "" {
		stored.Status = domain.StatusPending
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	s.records[stored.Reference] = &stored
	out := stored
	return &out, true, nil
}

// Get returns a copy of the record, or domain.ErrNotFound.
func (s *Store) Get(reference string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.records[reference]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *tx
	return &out, nil
}

// UpdateStatus merges a status and provider response into an existing
// record and stamps lastCheckedAt. An absent reference is a no-op, not
// an error: a callback may race an administrative delete.
func (s *Store) UpdateStatus(reference string, status domain.TransactionStatus, providerResponse json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.records[reference]
	if !ok {
		return
	}

	// Terminal states are sticky.
	if !tx.Status.IsTerminal() && status != "" {
		tx.Status = status
	}
	if len(providerResponse) > 0 {
		tx.ProviderResponse = providerResponse
	}
	now := time.Now()
	tx.LastCheckedAt = &now
}

// SetProviderRef records the provider's own reference after submission.
func (s *Store) SetProviderRef(reference, providerRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx, ok := s.records[reference]; ok && providerRef != "" {
		tx.ProviderRef = providerRef
	}
}

// List returns records matching the filter, newest first, sliced to the
// requested page. The second return is the total match count before
// pagination.
func (s *Store) List(filter Filter, page Page) ([]*domain.Transaction, int) {
	page = page.Clamp()

	s.mu.RLock()
	matched := make([]*domain.Transaction, 0, len(s.records))
	for _, tx := range s.records {
		if filter.Kind != "" && tx.Kind != filter.Kind {
			continue
		}
		if len(filter.StatusIn) > 0 && !statusIn(tx.Status, filter.StatusIn) {
			continue
		}
		out := *tx
		matched = append(matched, &out)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].Reference > matched[j].Reference
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page.Page - 1) * page.Limit
	if start >= total {
		return []*domain.Transaction{}, total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total
}

// Delete removes the record if present and reports whether anything was
// removed. Administrative cleanup only.
func (s *Store) Delete(reference string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[reference]; !ok {
		return false
	}
	delete(s.records, reference)
	return true
}

// Stats computes aggregate counts and the gross amount sum. Pending is
// the union of all non-terminal statuses, so successful+failed+pending
// always equals total.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		ByKind:      make(map[domain.TransactionKind]int),
		TotalVolume: decimal.Zero,
	}

	for _, tx := range s.records {
		stats.Total++
		stats.ByKind[tx.Kind]++
		switch tx.Status {
		case domain.StatusSuccess:
			stats.Successful++
		case domain.StatusFailed:
			stats.Failed++
		default:
			stats.Pending++
		}
		stats.TotalVolume = stats.TotalVolume.Add(tx.Amount)
	}

	return stats
}

func statusIn(status domain.TransactionStatus, set []domain.TransactionStatus) bool {
	for _, s := range set {
		if status == s {
			return true
		}
	}
	return false
}
