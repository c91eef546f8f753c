package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_events"
	"github.com/light-bringer/optics-discounts/internal/app/discount/repo"
	"github.com/light-bringer/optics-discounts/internal/models/m_discount_request"
	"github.com/light-bringer/optics-discounts/internal/models/m_outbox"
	"github.com/light-bringer/optics-discounts/internal/models/m_product"
	"github.com/light-bringer/optics-discounts/internal/pkg/committer"
)

type guard struct {
	check func() bool
	apply func()
}

// Store is an in-memory stand-in for the Spanner tables. Repositories built
// from it stage their mutations and guards; Apply commits a plan atomically
// with the same all-or-nothing semantics as committer.Committer.
type Store struct {
	mu       sync.Mutex
	requests map[string]domain.RequestSnapshot
	products map[string]*contracts.Product
	patients map[string]bool
	events   []*m_outbox.Data
	staged   map[*spanner.Mutation]func()
	guards   map[string]guard
	model    *m_discount_request.Model
	commits  int

	// BeforeCommit runs at the start of Apply, outside the store lock. Tests
	// use it to interleave a competing commit.
	BeforeCommit func()
	// ReadErr, when set, fails every read.
	ReadErr error
	// CommitErr, when set, fails every non-empty commit.
	CommitErr error
}

func NewStore() *Store {
	return &Store{
		requests: make(map[string]domain.RequestSnapshot),
		products: make(map[string]*contracts.Product),
		patients: make(map[string]bool),
		staged:   make(map[*spanner.Mutation]func()),
		guards:   make(map[string]guard),
		model:    m_discount_request.NewModel(),
	}
}

// AddProduct seeds a product priced at price (a decimal string).
func (s *Store) AddProduct(id, price string) {
	p, err := domain.ParseMoney(price)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = &contracts.Product{ID: id, Name: "Product " + id, Price: p}
}

// RemoveProduct deletes a product, as when the catalog retires it.
func (s *Store) RemoveProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// AddPatient seeds a patient.
func (s *Store) AddPatient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[id] = true
}

// PutRequest stores a request as if it had been committed.
func (s *Store) PutRequest(snap domain.RequestSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[snap.ID] = snap
}

// Request returns the committed state of a request.
func (s *Store) Request(id string) (domain.RequestSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.requests[id]
	return snap, ok
}

// Product returns the committed state of a product.
func (s *Store) Product(id string) contracts.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.products[id]
}

// Events returns committed outbox rows in commit order.
func (s *Store) Events() []*m_outbox.Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*m_outbox.Data(nil), s.events...)
}

// EventTypes returns the committed outbox event types in order.
func (s *Store) EventTypes() []string {
	events := s.Events()
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	return types
}

// Commits returns how many non-empty plans were committed.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

func (s *Store) stage(m *spanner.Mutation, fn func()) *spanner.Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[m] = fn
	return m
}

func (s *Store) stageGuard(stmt spanner.Statement, g guard) spanner.Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guards[guardKey(stmt)] = g
	return stmt
}

func guardKey(stmt spanner.Statement) string {
	return fmt.Sprintf("%s|%v|%v", stmt.SQL, stmt.Params["request_id"], stmt.Params["product_id"])
}

// Apply implements committer.Applier.
func (s *Store) Apply(ctx context.Context, plan *committer.CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}
	if s.BeforeCommit != nil {
		s.BeforeCommit()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CommitErr != nil {
		return s.CommitErr
	}

	guards := make([]guard, 0, len(plan.Guards()))
	for _, g := range plan.Guards() {
		staged, ok := s.guards[guardKey(g.Stmt)]
		if !ok {
			return fmt.Errorf("unknown guard statement: %s", g.Stmt.SQL)
		}
		if !staged.check() {
			return g.OnMiss
		}
		guards = append(guards, staged)
	}

	writes := make([]func(), 0, len(plan.Mutations()))
	for _, m := range plan.Mutations() {
		fn, ok := s.staged[m]
		if !ok {
			return fmt.Errorf("unknown mutation in plan")
		}
		writes = append(writes, fn)
	}

	for _, g := range guards {
		g.apply()
	}
	for _, w := range writes {
		w()
	}
	for _, m := range plan.Mutations() {
		delete(s.staged, m)
	}
	s.commits++
	return nil
}

// RequestRepo returns the discount request repository and read model.
func (s *Store) RequestRepo() *RequestRepo { return &RequestRepo{s: s} }

// Catalog returns the product catalog.
func (s *Store) Catalog() *Catalog { return &Catalog{s: s} }

// Patients returns the patient directory.
func (s *Store) Patients() *Patients { return &Patients{s: s} }

// Outbox returns the outbox repository.
func (s *Store) Outbox() *Outbox { return &Outbox{s: s, real: repo.NewOutboxRepo()} }

// RequestRepo implements contracts.DiscountRequestRepository and contracts.ReadModel.
type RequestRepo struct {
	s *Store
}

var (
	_ contracts.DiscountRequestRepository = (*RequestRepo)(nil)
	_ contracts.ReadModel                 = (*RequestRepo)(nil)
	_ contracts.ProductCatalog            = (*Catalog)(nil)
	_ contracts.PatientDirectory          = (*Patients)(nil)
	_ contracts.OutboxRepository          = (*Outbox)(nil)
	_ list_events.EventsReadModel         = (*Outbox)(nil)
	_ committer.Applier                   = (*Store)(nil)
)

func (r *RequestRepo) token(id string) *spanner.Mutation {
	return spanner.InsertOrUpdate(m_discount_request.TableName, []string{m_discount_request.RequestID}, []interface{}{id})
}

func (r *RequestRepo) InsertMut(req *domain.DiscountRequest) *spanner.Mutation {
	snap := req.Snapshot()
	return r.s.stage(r.token(snap.ID), func() { r.s.requests[snap.ID] = snap })
}

func (r *RequestRepo) UpdateMut(req *domain.DiscountRequest) *spanner.Mutation {
	if !req.Changes().HasChanges() {
		return nil
	}
	snap := req.Snapshot()
	return r.s.stage(r.token(snap.ID), func() { r.s.requests[snap.ID] = snap })
}

func (r *RequestRepo) isPending(id string) bool {
	snap, ok := r.s.requests[id]
	return ok && snap.Status == domain.StatusPending
}

func (r *RequestRepo) PendingGuard(requestID string) spanner.Statement {
	return r.s.stageGuard(r.s.model.PendingLockStmt(requestID), guard{
		check: func() bool { return r.isPending(requestID) },
		apply: func() {},
	})
}

func (r *RequestRepo) DecisionStmt(req *domain.DiscountRequest) spanner.Statement {
	snap := req.Snapshot()
	stmt := r.s.model.DecideStmt(&m_discount_request.Data{RequestID: snap.ID, Status: string(snap.Status)})
	return r.s.stageGuard(stmt, guard{
		check: func() bool { return r.isPending(snap.ID) },
		apply: func() {
			cur := r.s.requests[snap.ID]
			cur.Status = snap.Status
			cur.ApprovedBy = snap.ApprovedBy
			cur.ApprovalNotes = snap.ApprovalNotes
			cur.DecidedAt = snap.DecidedAt
			cur.UpdatedAt = snap.UpdatedAt
			r.s.requests[snap.ID] = cur
		},
	})
}

func (r *RequestRepo) GetByID(ctx context.Context, requestID string) (*domain.DiscountRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ReadErr != nil {
		return nil, r.s.ReadErr
	}
	snap, ok := r.s.requests[requestID]
	if !ok {
		return nil, domain.ErrDiscountRequestNotFound
	}
	return domain.ReconstructDiscountRequest(snap), nil
}

func (r *RequestRepo) all() []*domain.DiscountRequest {
	out := make([]*domain.DiscountRequest, 0, len(r.s.requests))
	for _, snap := range r.s.requests {
		out = append(out, domain.ReconstructDiscountRequest(snap))
	}
	return out
}

func (r *RequestRepo) ListActive(ctx context.Context, filter contracts.ActiveFilter) ([]*domain.DiscountRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ReadErr != nil {
		return nil, r.s.ReadErr
	}

	out := make([]*domain.DiscountRequest, 0)
	for _, req := range r.all() {
		if !req.IsActiveOn(filter.Today) {
			continue
		}
		if filter.ProductID != "" && req.ProductID() != filter.ProductID {
			continue
		}
		if filter.PatientID != "" && !req.Scope().AppliesTo(filter.PatientID) {
			continue
		}
		out = append(out, req)
	}
	sortByDecision(out)
	return out, nil
}

func (r *RequestRepo) List(ctx context.Context, filter *contracts.ListFilter) (*contracts.ListResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ReadErr != nil {
		return nil, r.s.ReadErr
	}

	matched := make([]*domain.DiscountRequest, 0)
	for _, req := range r.all() {
		switch {
		case filter.Status != "" && string(req.Status()) != filter.Status:
		case filter.ProductID != "" && req.ProductID() != filter.ProductID:
		case filter.PatientID != "" && req.Scope().PatientID() != filter.PatientID:
		case filter.RequestedBy != "" && req.RequestedBy() != filter.RequestedBy:
		default:
			matched = append(matched, req)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt().Equal(matched[j].CreatedAt()) {
			return matched[i].CreatedAt().After(matched[j].CreatedAt())
		}
		return matched[i].ID() < matched[j].ID()
	})

	offset := 0
	if filter.PageToken != "" {
		n, err := strconv.Atoi(filter.PageToken)
		if err != nil || n < 0 {
			return nil, domain.FieldError("page_token", "invalid page token")
		}
		offset = n
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}

	res := &contracts.ListResult{TotalCount: int64(len(matched))}
	if offset < len(matched) {
		end := offset + size
		if end > len(matched) {
			end = len(matched)
		}
		res.Requests = matched[offset:end]
		if end < len(matched) {
			res.NextPageToken = strconv.Itoa(end)
		}
	}
	return res, nil
}

// Catalog implements contracts.ProductCatalog.
type Catalog struct {
	s *Store
}

func (c *Catalog) GetProduct(ctx context.Context, productID string) (*contracts.Product, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.ReadErr != nil {
		return nil, c.s.ReadErr
	}
	p, ok := c.s.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *Catalog) Exists(ctx context.Context, productID string) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.ReadErr != nil {
		return false, c.s.ReadErr
	}
	_, ok := c.s.products[productID]
	return ok, nil
}

func (c *Catalog) HasDiscountsStmt(productID string) spanner.Statement {
	stmt := m_product.NewModel().HasDiscountsStmt(productID)
	return c.s.stageGuard(stmt, guard{
		check: func() bool {
			_, ok := c.s.products[productID]
			return ok
		},
		apply: func() {
			c.s.products[productID].HasDiscounts = true
		},
	})
}

// Patients implements contracts.PatientDirectory.
type Patients struct {
	s *Store
}

func (p *Patients) Exists(ctx context.Context, patientID string) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if p.s.ReadErr != nil {
		return false, p.s.ReadErr
	}
	return p.s.patients[patientID], nil
}

// Outbox implements contracts.OutboxRepository and list_events.EventsReadModel.
type Outbox struct {
	s    *Store
	real contracts.OutboxRepository
}

func (o *Outbox) EnrichEvent(event domain.DomainEvent) (*contracts.OutboxEvent, error) {
	return o.real.EnrichEvent(event)
}

func (o *Outbox) InsertMut(event *contracts.OutboxEvent) *spanner.Mutation {
	m := spanner.Insert(m_outbox.TableName, []string{m_outbox.EventID}, []interface{}{event.EventID})
	return o.s.stage(m, func() {
		o.s.events = append(o.s.events, &m_outbox.Data{
			EventID:     event.EventID,
			EventType:   event.EventType,
			AggregateID: event.AggregateID,
			Payload:     spanner.NullJSON{Value: json.RawMessage(event.Payload), Valid: event.Payload != ""},
			Status:      event.Status,
		})
	})
}

func (o *Outbox) ListEvents(ctx context.Context, req *list_events.Request) ([]*m_outbox.Data, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	if o.s.ReadErr != nil {
		return nil, o.s.ReadErr
	}

	out := make([]*m_outbox.Data, 0)
	for i := len(o.s.events) - 1; i >= 0 && len(out) < req.Limit; i-- {
		e := o.s.events[i]
		switch {
		case req.EventType != "" && e.EventType != req.EventType:
		case req.AggregateID != "" && e.AggregateID != req.AggregateID:
		case req.Status != "" && e.Status != req.Status:
		default:
			out = append(out, e)
		}
	}
	return out, nil
}

// sortByDecision mirrors the ORDER BY decided_at DESC, request_id ASC of the
// Spanner read model.
func sortByDecision(reqs []*domain.DiscountRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		a, b := reqs[i].DecidedAt(), reqs[j].DecidedAt()
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return reqs[i].ID() < reqs[j].ID()
	})
}
