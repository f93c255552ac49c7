package test

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/domain/repository"
)

// MemoryStore is an in-memory implementation of every repository port with
// the same conditional-write semantics as the postgres adapter. Hooks run
// outside the store lock so tests can inject racing writes.
type MemoryStore struct {
	mu sync.Mutex

	users    map[int64]*model.User
	logins   map[string]int64
	nextUser int64
	orders   map[uuid.UUID]*model.Order
	quotes   map[uuid.UUID]*model.Quote
	rfqs     map[uuid.UUID]*model.RFQ
	audit    []model.PaymentAuditEntry
	auditSeq int64
	base     time.Time
	ticks    int64

	BeforeUpdate  func(id uuid.UUID)
	BeforeReserve func(clientID int64)
	CommitErr     error
	ReleaseErr    error
	RejectErr     error

	Reserves int
	Releases int
	Commits  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]*model.User),
		logins:   make(map[string]int64),
		nextUser: 1,
		orders:   make(map[uuid.UUID]*model.Order),
		quotes:   make(map[uuid.UUID]*model.Quote),
		rfqs:     make(map[uuid.UUID]*model.RFQ),
		base:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Now returns a strictly increasing timestamp.
func (s *MemoryStore) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick()
}

func (s *MemoryStore) tick() time.Time {
	s.ticks++
	return s.base.Add(time.Duration(s.ticks) * time.Millisecond)
}

func (s *MemoryStore) Users() repository.UserRepository     { return userRepo{s} }
func (s *MemoryStore) Orders() repository.OrderRepository   { return orderRepo{s} }
func (s *MemoryStore) Quotes() repository.QuoteRepository   { return quoteRepo{s} }
func (s *MemoryStore) Credit() repository.CreditRepository  { return creditRepo{s} }
func (s *MemoryStore) Audit() repository.AuditRepository    { return auditRepo{s} }

var _ repository.Factory = (*MemoryStore)(nil)

// AddUser seeds a user and returns its id.
func (s *MemoryStore) AddUser(login string, role model.Role, limit, used decimal.Decimal) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextUser
	s.nextUser++
	s.users[id] = &model.User{
		ID:           id,
		Login:        login,
		PasswordHash: "hash:" + login,
		Role:         role,
		CreditLimit:  limit,
		CreditUsed:   used,
		CreatedAt:    s.tick(),
	}
	s.logins[login] = id
	return id
}

// AddRFQ seeds an open RFQ owned by clientID.
func (s *MemoryStore) AddRFQ(clientID int64) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	rfq := &model.RFQ{
		ID:        uuid.New(),
		ClientID:  clientID,
		Status:    model.RFQStatusOpen,
		Items:     json.RawMessage(`[{"sku":"A-1","qty":10}]`),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.rfqs[rfq.ID] = rfq
	return rfq.ID
}

// AddQuote seeds a quote on rfqID.
func (s *MemoryStore) AddQuote(rfqID uuid.UUID, supplierID int64, price decimal.Decimal, status model.QuoteStatus) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	q := &model.Quote{
		ID:            uuid.New(),
		RFQID:         rfqID,
		SupplierID:    supplierID,
		SupplierPrice: price,
		FinalPrice:    price,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.quotes[q.ID] = q
	return q.ID
}

// AddOrder seeds an order in the given status outside the acceptance flow.
func (s *MemoryStore) AddOrder(clientID, supplierID int64, amount decimal.Decimal, status model.OrderStatus) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	o := &model.Order{
		ID:         uuid.New(),
		ClientID:   clientID,
		SupplierID: supplierID,
		Amount:     amount,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.orders[o.ID] = o
	return o.ID
}

// ForceStatus overwrites an order status the way a concurrent writer would.
func (s *MemoryStore) ForceStatus(id uuid.UUID, status model.OrderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		o.Status = status
		o.UpdatedAt = s.tick()
	}
}

// ForceCreditUsed overwrites a client's creditUsed.
func (s *MemoryStore) ForceCreditUsed(clientID int64, used decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[clientID]; ok {
		u.CreditUsed = used
	}
}

func (s *MemoryStore) Order(id uuid.UUID) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[id])
}

func (s *MemoryStore) Quote(id uuid.UUID) model.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.quotes[id]
}

func (s *MemoryStore) RFQ(id uuid.UUID) model.RFQ {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.rfqs[id]
}

func (s *MemoryStore) CreditUsed(clientID int64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[clientID].CreditUsed
}

// OrderCount returns the number of stored orders.
func (s *MemoryStore) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// AuditEntries returns the audit entries of an order in insertion order.
func (s *MemoryStore) AuditEntries(orderID uuid.UUID) []model.PaymentAuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PaymentAuditEntry
	for _, e := range s.audit {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out
}

// AppendAudit writes an entry directly, bypassing order updates.
func (s *MemoryStore) AppendAudit(e model.PaymentAuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.tick()
	}
	s.auditSeq++
	e.Seq = s.auditSeq
	s.audit = append(s.audit, e)
}

func cloneOrder(o *model.Order) model.Order {
	if o == nil {
		return model.Order{}
	}
	c := *o
	if o.Items != nil {
		c.Items = append(json.RawMessage(nil), o.Items...)
	}
	return c
}

type userRepo struct{ s *MemoryStore }

func (r userRepo) Create(_ context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.logins[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	id := r.s.nextUser
	r.s.nextUser++
	u := &model.User{ID: id, Login: login, PasswordHash: passwordHash, Role: role, CreatedAt: r.s.tick()}
	r.s.users[id] = u
	r.s.logins[login] = id
	c := *u
	return &c, nil
}

func (r userRepo) GetByLogin(_ context.Context, login string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.logins[login]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	c := *r.s.users[id]
	return &c, nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	c := *u
	return &c, nil
}

type orderRepo struct{ s *MemoryStore }

func (r orderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	c := cloneOrder(o)
	return &c, nil
}

func (r orderRepo) GetByQuoteID(_ context.Context, quoteID uuid.UUID) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.QuoteID != nil && *o.QuoteID == quoteID {
			c := cloneOrder(o)
			return &c, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r orderRepo) Update(_ context.Context, id uuid.UUID, expected *model.OrderStatus, patch model.OrderPatch, audit *model.PaymentAuditEntry) (bool, error) {
	if hook := r.s.BeforeUpdate; hook != nil {
		hook(id)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return false, nil
	}
	if expected != nil && o.Status != *expected {
		return false, nil
	}
	if patch.PaymentReference.Set && patch.PaymentReference.Value != nil {
		if r.referenceInUseLocked(*patch.PaymentReference.Value, id) {
			return false, domainErrors.ErrDuplicateReference
		}
	}
	patch.Apply(o)
	o.UpdatedAt = r.s.tick()
	if audit != nil {
		e := *audit
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = o.UpdatedAt
		}
		r.s.auditSeq++
		e.Seq = r.s.auditSeq
		audit.Seq = e.Seq
		r.s.audit = append(r.s.audit, e)
	}
	return true, nil
}

func (r orderRepo) PaymentReferenceInUse(_ context.Context, reference string, excludeID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.referenceInUseLocked(reference, excludeID), nil
}

func (r orderRepo) referenceInUseLocked(reference string, excludeID uuid.UUID) bool {
	for id, o := range r.s.orders {
		if id != excludeID && o.PaymentReference != nil && *o.PaymentReference == reference {
			return true
		}
	}
	return false
}

func (r orderRepo) ListUpdatedAfter(_ context.Context, after model.OrderCursor, limit int) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if after.Less(o.Cursor()) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cursor().Less(out[j].Cursor()) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type quoteRepo struct{ s *MemoryStore }

func (r quoteRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotes[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	c := *q
	return &c, nil
}

func (r quoteRepo) GetRFQ(_ context.Context, id uuid.UUID) (*model.RFQ, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rfq, ok := r.s.rfqs[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	c := *rfq
	return &c, nil
}

func (r quoteRepo) CommitAcceptance(_ context.Context, quote *model.Quote, order *model.Order) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Commits++
	if r.s.CommitErr != nil {
		return nil, r.s.CommitErr
	}
	for _, o := range r.s.orders {
		if o.QuoteID != nil && *o.QuoteID == quote.ID {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	q, ok := r.s.quotes[quote.ID]
	if !ok || q.Status != model.QuoteStatusSentToClient {
		return nil, domainErrors.ErrQuoteNotAcceptable
	}
	for _, sibling := range r.s.quotes {
		if sibling.RFQID == q.RFQID && sibling.Status == model.QuoteStatusAccepted {
			return nil, domainErrors.ErrQuoteNotAcceptable
		}
	}

	now := r.s.tick()
	stored := cloneOrder(order)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.s.orders[stored.ID] = &stored

	q.Status = model.QuoteStatusAccepted
	q.UpdatedAt = now
	if rfq, ok := r.s.rfqs[q.RFQID]; ok {
		rfq.Status = model.RFQStatusClosed
		rfq.UpdatedAt = now
	}
	out := cloneOrder(&stored)
	return &out, nil
}

func (r quoteRepo) RejectSiblings(_ context.Context, rfqID, acceptedID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.RejectErr != nil {
		return 0, r.s.RejectErr
	}
	var n int64
	for id, q := range r.s.quotes {
		if q.RFQID == rfqID && id != acceptedID && !q.Status.IsTerminal() {
			q.Status = model.QuoteStatusRejected
			n++
		}
	}
	return n, nil
}

type creditRepo struct{ s *MemoryStore }

func (r creditRepo) GetProfile(_ context.Context, clientID int64) (*model.CreditProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[clientID]
	if !ok || u.Role != model.RoleClient {
		return nil, domainErrors.ErrNotFound
	}
	return &model.CreditProfile{ClientID: u.ID, CreditLimit: u.CreditLimit, CreditUsed: u.CreditUsed}, nil
}

func (r creditRepo) Reserve(_ context.Context, clientID int64, expectedUsed, amount decimal.Decimal) (bool, error) {
	if hook := r.s.BeforeReserve; hook != nil {
		hook(clientID)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[clientID]
	if !ok {
		return false, nil
	}
	next := u.CreditUsed.Add(amount)
	if !u.CreditUsed.Equal(expectedUsed) || next.GreaterThan(u.CreditLimit) {
		return false, nil
	}
	u.CreditUsed = next
	r.s.Reserves++
	return true, nil
}

func (r creditRepo) Release(_ context.Context, clientID int64, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ReleaseErr != nil {
		return r.s.ReleaseErr
	}
	u, ok := r.s.users[clientID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	u.CreditUsed = decimal.Max(u.CreditUsed.Sub(amount), decimal.Zero)
	r.s.Releases++
	return nil
}

func (r creditRepo) SetLimit(_ context.Context, clientID int64, limit decimal.Decimal) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[clientID]
	if !ok || u.Role != model.RoleClient || u.CreditUsed.GreaterThan(limit) {
		return false, nil
	}
	u.CreditLimit = limit
	return true, nil
}

type auditRepo struct{ s *MemoryStore }

func (r auditRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]model.PaymentAuditEntry, error) {
	entries := r.s.AuditEntries(orderID)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries, nil
}
