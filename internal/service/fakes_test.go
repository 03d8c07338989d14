package service

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"attendance/internal/clock"
	"attendance/internal/event"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory repositories ───────────────────────────────────────────────────
// They honour the same unique indexes as the SQL schema and answer misses
// with gorm.ErrRecordNotFound, so services see what they would see on Postgres.

type store[T any] struct {
	mu     sync.Mutex
	rows   map[int64]T
	nextID int64
}

func newStore[T any]() *store[T] { return &store[T]{rows: make(map[int64]T)} }

func (s *store[T]) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, next := maps.Clone(s.rows), s.nextID
	return func() {
		s.mu.Lock()
		s.rows, s.nextID = rows, next
		s.mu.Unlock()
	}
}

func (s *store[T]) sorted() []T {
	ids := slices.Sorted(maps.Keys(s.rows))
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.rows[id])
	}
	return out
}

type snapshotter interface{ snapshot() func() }

// memTx rolls every participating store back when fn fails.
type memTx struct {
	parts []snapshotter
	calls int
}

func (m *memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	restores := make([]func(), 0, len(m.parts))
	for _, p := range m.parts {
		restores = append(restores, p.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, r := range restores {
			r()
		}
		return err
	}
	return nil
}

// users

type memUserRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]model.User
	roles []model.Role
}

func newMemUserRepo() *memUserRepo {
	r := &memUserRepo{rows: make(map[uuid.UUID]model.User)}
	for i, name := range model.KnownRoles {
		r.roles = append(r.roles, model.Role{ID: int64(i + 1), Name: name})
	}
	return r
}

func (r *memUserRepo) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := maps.Clone(r.rows)
	return func() {
		r.mu.Lock()
		r.rows = rows
		r.mu.Unlock()
	}
}

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.rows {
		if other.Email == u.Email || other.EmployeeNumber == u.EmployeeNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.rows[u.ID] = *u
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) List(_ context.Context, activeOnly bool) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.rows {
		if activeOnly && !u.IsActive {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (r *memUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.rows[u.ID] = *u
	return nil
}

func (r *memUserRepo) FindRoles(_ context.Context, names []string) ([]model.Role, error) {
	var out []model.Role
	for _, role := range r.roles {
		if slices.Contains(names, role.Name) {
			out = append(out, role)
		}
	}
	return out, nil
}

func (r *memUserRepo) numbers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, u := range r.rows {
		out = append(out, u.EmployeeNumber)
	}
	return out
}

// job orders

type memJobOrderRepo struct{ *store[model.JobOrder] }

func (r memJobOrderRepo) Create(_ context.Context, o *model.JobOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.rows {
		if other.OrderNumber == o.OrderNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	o.ID = r.nextID
	row := *o
	row.Client = nil
	r.rows[o.ID] = row
	return nil
}

func (r memJobOrderRepo) FindByID(_ context.Context, id int64) (*model.JobOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r memJobOrderRepo) List(_ context.Context, f repository.JobOrderFilter) ([]model.JobOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.JobOrder
	for _, o := range r.sorted() {
		if f.ClientID != nil && o.ClientID != *f.ClientID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r memJobOrderRepo) Update(_ context.Context, o *model.JobOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[o.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	row := *o
	row.Client = nil
	r.rows[o.ID] = row
	return nil
}

func (r memJobOrderRepo) numbers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, o := range r.rows {
		out = append(out, o.OrderNumber)
	}
	return out
}

// quotes

type memQuoteRepo struct {
	quotes *store[model.Quote]
	lines  *store[model.QuoteLineItem]
	orders memJobOrderRepo
}

func (r *memQuoteRepo) snapshot() func() {
	a, b := r.quotes.snapshot(), r.lines.snapshot()
	return func() { a(); b() }
}

func (r *memQuoteRepo) Create(_ context.Context, q *model.Quote) error {
	r.quotes.mu.Lock()
	defer r.quotes.mu.Unlock()
	for _, other := range r.quotes.rows {
		if other.QuoteNumber == q.QuoteNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	r.quotes.nextID++
	q.ID = r.quotes.nextID
	row := *q
	row.LineItems, row.JobOrder = nil, nil
	r.quotes.rows[q.ID] = row
	return nil
}

func (r *memQuoteRepo) hydrate(ctx context.Context, q model.Quote) model.Quote {
	r.lines.mu.Lock()
	for _, li := range r.lines.sorted() {
		if li.QuoteID == q.ID {
			q.LineItems = append(q.LineItems, li)
		}
	}
	r.lines.mu.Unlock()
	if jo, err := r.orders.FindByID(ctx, q.JobOrderID); err == nil {
		q.JobOrder = jo
	}
	return q
}

func (r *memQuoteRepo) FindByID(ctx context.Context, id int64) (*model.Quote, error) {
	r.quotes.mu.Lock()
	q, ok := r.quotes.rows[id]
	r.quotes.mu.Unlock()
	if !ok || q.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	q = r.hydrate(ctx, q)
	return &q, nil
}

func (r *memQuoteRepo) ListByJobOrder(ctx context.Context, jobOrderID int64) ([]model.Quote, error) {
	r.quotes.mu.Lock()
	all := r.quotes.sorted()
	r.quotes.mu.Unlock()
	var out []model.Quote
	for _, q := range all {
		if q.JobOrderID == jobOrderID && !q.DeletedAt.Valid {
			out = append(out, r.hydrate(ctx, q))
		}
	}
	return out, nil
}

func (r *memQuoteRepo) Update(_ context.Context, q *model.Quote) error {
	r.quotes.mu.Lock()
	defer r.quotes.mu.Unlock()
	if _, ok := r.quotes.rows[q.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	row := *q
	row.LineItems, row.JobOrder = nil, nil
	r.quotes.rows[q.ID] = row
	return nil
}

func (r *memQuoteRepo) Delete(_ context.Context, id int64) error {
	r.quotes.mu.Lock()
	defer r.quotes.mu.Unlock()
	q, ok := r.quotes.rows[id]
	if !ok || q.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	q.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.quotes.rows[id] = q
	return nil
}

func (r *memQuoteRepo) AddLineItem(_ context.Context, li *model.QuoteLineItem) error {
	r.lines.mu.Lock()
	defer r.lines.mu.Unlock()
	r.lines.nextID++
	li.ID = r.lines.nextID
	r.lines.rows[li.ID] = *li
	return nil
}

func (r *memQuoteRepo) DeleteLineItem(_ context.Context, quoteID, itemID int64) error {
	r.lines.mu.Lock()
	defer r.lines.mu.Unlock()
	li, ok := r.lines.rows[itemID]
	if !ok || li.QuoteID != quoteID {
		return gorm.ErrRecordNotFound
	}
	delete(r.lines.rows, itemID)
	return nil
}

func (r *memQuoteRepo) numbers() []string {
	r.quotes.mu.Lock()
	defer r.quotes.mu.Unlock()
	var out []string
	for _, q := range r.quotes.rows {
		out = append(out, q.QuoteNumber)
	}
	return out
}

// jobs

type memJobRepo struct {
	jobs        *store[model.Job]
	assignments *store[model.JobAssignment]
	orders      memJobOrderRepo
}

func (r *memJobRepo) snapshot() func() {
	a, b := r.jobs.snapshot(), r.assignments.snapshot()
	return func() { a(); b() }
}

func (r *memJobRepo) Create(_ context.Context, j *model.Job) error {
	r.jobs.mu.Lock()
	defer r.jobs.mu.Unlock()
	for _, other := range r.jobs.rows {
		if other.JobNumber == j.JobNumber || other.JobOrderID == j.JobOrderID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.jobs.nextID++
	j.ID = r.jobs.nextID
	row := *j
	row.JobOrder, row.Assignments = nil, nil
	r.jobs.rows[j.ID] = row
	return nil
}

func (r *memJobRepo) hydrate(ctx context.Context, j model.Job) model.Job {
	r.assignments.mu.Lock()
	for _, a := range r.assignments.sorted() {
		if a.JobID == j.ID && a.IsActive {
			j.Assignments = append(j.Assignments, a)
		}
	}
	r.assignments.mu.Unlock()
	if jo, err := r.orders.FindByID(ctx, j.JobOrderID); err == nil {
		j.JobOrder = jo
	}
	return j
}

func (r *memJobRepo) FindByID(ctx context.Context, id int64) (*model.Job, error) {
	r.jobs.mu.Lock()
	j, ok := r.jobs.rows[id]
	r.jobs.mu.Unlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	j = r.hydrate(ctx, j)
	return &j, nil
}

func (r *memJobRepo) FindByJobOrderID(_ context.Context, jobOrderID int64) (*model.Job, error) {
	r.jobs.mu.Lock()
	defer r.jobs.mu.Unlock()
	for _, j := range r.jobs.rows {
		if j.JobOrderID == jobOrderID {
			return &j, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memJobRepo) List(ctx context.Context, f repository.JobFilter) ([]model.Job, error) {
	r.jobs.mu.Lock()
	all := r.jobs.sorted()
	r.jobs.mu.Unlock()
	var out []model.Job
	for _, j := range all {
		if f.CrewBossID != nil && !j.IsCrewBoss(*f.CrewBossID) {
			continue
		}
		j = r.hydrate(ctx, j)
		if f.EmployeeID != nil && !slices.ContainsFunc(j.Assignments, func(a model.JobAssignment) bool {
			return a.EmployeeID == *f.EmployeeID
		}) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (r *memJobRepo) Update(_ context.Context, j *model.Job) error {
	r.jobs.mu.Lock()
	defer r.jobs.mu.Unlock()
	if _, ok := r.jobs.rows[j.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	row := *j
	row.JobOrder, row.Assignments = nil, nil
	r.jobs.rows[j.ID] = row
	return nil
}

func (r *memJobRepo) CreateAssignment(_ context.Context, a *model.JobAssignment) error {
	r.assignments.mu.Lock()
	defer r.assignments.mu.Unlock()
	for _, other := range r.assignments.rows {
		if other.IsActive && other.JobID == a.JobID && other.EmployeeID == a.EmployeeID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.assignments.nextID++
	a.ID = r.assignments.nextID
	row := *a
	row.Employee = nil
	r.assignments.rows[a.ID] = row
	return nil
}

func (r *memJobRepo) FindActiveAssignment(_ context.Context, jobID int64, employeeID uuid.UUID) (*model.JobAssignment, error) {
	r.assignments.mu.Lock()
	defer r.assignments.mu.Unlock()
	for _, a := range r.assignments.rows {
		if a.IsActive && a.JobID == jobID && a.EmployeeID == employeeID {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memJobRepo) UpdateAssignment(_ context.Context, a *model.JobAssignment) error {
	r.assignments.mu.Lock()
	defer r.assignments.mu.Unlock()
	if _, ok := r.assignments.rows[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	row := *a
	row.Employee = nil
	r.assignments.rows[a.ID] = row
	return nil
}

func (r *memJobRepo) ListAssignments(_ context.Context, jobID int64, activeOnly bool) ([]model.JobAssignment, error) {
	r.assignments.mu.Lock()
	defer r.assignments.mu.Unlock()
	var out []model.JobAssignment
	for _, a := range r.assignments.sorted() {
		if a.JobID == jobID && (!activeOnly || a.IsActive) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memJobRepo) numbers() []string {
	r.jobs.mu.Lock()
	defer r.jobs.mu.Unlock()
	var out []string
	for _, j := range r.jobs.rows {
		out = append(out, j.JobNumber)
	}
	return out
}

// invoices

type memInvoiceRepo struct {
	*store[model.Invoice]
	lineID int64
}

func (r *memInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.rows {
		if other.InvoiceNumber == inv.InvoiceNumber {
			return gorm.ErrDuplicatedKey
		}
		if inv.QuoteID != nil && other.QuoteID != nil && *other.QuoteID == *inv.QuoteID && !other.DeletedAt.Valid {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	inv.ID = r.nextID
	for i := range inv.LineItems {
		r.lineID++
		inv.LineItems[i].ID = r.lineID
		inv.LineItems[i].InvoiceID = inv.ID
	}
	row := *inv
	row.LineItems = slices.Clone(inv.LineItems)
	r.rows[inv.ID] = row
	return nil
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id int64) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[id]
	if !ok || inv.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	inv.LineItems = slices.Clone(inv.LineItems)
	return &inv, nil
}

func (r *memInvoiceRepo) FindByQuoteID(_ context.Context, quoteID int64) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.rows {
		if inv.QuoteID != nil && *inv.QuoteID == quoteID && !inv.DeletedAt.Valid {
			inv.LineItems = slices.Clone(inv.LineItems)
			return &inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memInvoiceRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Invoice
	for _, inv := range r.sorted() {
		if inv.ClientID == clientID && !inv.DeletedAt.Valid {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.rows[inv.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row := *inv
	row.LineItems = old.LineItems
	r.rows[inv.ID] = row
	return nil
}

func (r *memInvoiceRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[id]
	if !ok || inv.DeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	inv.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.rows[id] = inv
	return nil
}

func (r *memInvoiceRepo) numbers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, inv := range r.rows {
		out = append(out, inv.InvoiceNumber)
	}
	return out
}

// employee rates

type memRateRepo struct{ *store[model.EmployeeRate] }

func (r memRateRepo) Create(_ context.Context, rate *model.EmployeeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.rows {
		if other.IsActive && rate.IsActive && other.EmployeeID == rate.EmployeeID && other.ServiceItemID == rate.ServiceItemID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	rate.ID = r.nextID
	row := *rate
	row.ServiceItem = nil
	r.rows[rate.ID] = row
	return nil
}

func (r memRateRepo) FindByID(_ context.Context, id int64) (*model.EmployeeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rate, nil
}

func (r memRateRepo) FindEffective(_ context.Context, employeeID uuid.UUID, serviceItemID int64, asOf time.Time) (*model.EmployeeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *model.EmployeeRate
	for _, rate := range r.rows {
		if rate.EmployeeID != employeeID || rate.ServiceItemID != serviceItemID || !rate.EffectiveAt(asOf) {
			continue
		}
		if best == nil || rate.EffectiveDate.After(best.EffectiveDate) {
			rate := rate
			best = &rate
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (r memRateRepo) ListActive(_ context.Context, employeeID uuid.UUID) ([]model.EmployeeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.EmployeeRate
	for _, rate := range r.sorted() {
		if rate.EmployeeID == employeeID && rate.IsActive {
			out = append(out, rate)
		}
	}
	return out, nil
}

func (r memRateRepo) Deactivate(_ context.Context, employeeID uuid.UUID, serviceItemID int64, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, rate := range r.rows {
		if rate.EmployeeID != employeeID || rate.ServiceItemID != serviceItemID || !rate.IsActive {
			continue
		}
		rate.IsActive = false
		if rate.ExpiryDate == nil || rate.ExpiryDate.After(at) {
			rate.ExpiryDate = &at
		}
		rate.UpdatedAt = at
		r.rows[id] = rate
		n++
	}
	return n, nil
}

func (r memRateRepo) Update(_ context.Context, rate *model.EmployeeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[rate.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	row := *rate
	row.ServiceItem = nil
	r.rows[rate.ID] = row
	return nil
}

// active returns every active rate for the pair.
func (r memRateRepo) active(employeeID uuid.UUID, serviceItemID int64) []model.EmployeeRate {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.EmployeeRate
	for _, rate := range r.rows {
		if rate.EmployeeID == employeeID && rate.ServiceItemID == serviceItemID && rate.IsActive {
			out = append(out, rate)
		}
	}
	return out
}

// service items

type memServiceItemRepo struct{ *store[model.ServiceItem] }

func (r memServiceItemRepo) Create(_ context.Context, s *model.ServiceItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.rows[s.ID] = *s
	return nil
}

func (r memServiceItemRepo) FindByID(_ context.Context, id int64) (*model.ServiceItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r memServiceItemRepo) List(_ context.Context, activeOnly bool) ([]model.ServiceItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ServiceItem
	for _, s := range r.sorted() {
		if !activeOnly || s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memServiceItemRepo) ListShiftHours(_ context.Context) ([]model.ServiceItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ServiceItem
	for _, s := range r.sorted() {
		if s.IsActive && s.Type == model.ServiceShiftHours {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memServiceItemRepo) Update(_ context.Context, s *model.ServiceItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.rows[s.ID] = *s
	return nil
}

// time entries

type memTimeEntryRepo struct{ *store[model.TimeEntry] }

func (r memTimeEntryRepo) Create(_ context.Context, e *model.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Status == model.TimeEntryActive {
		for _, other := range r.rows {
			if other.UserID == e.UserID && other.Status == model.TimeEntryActive {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.nextID++
	e.ID = r.nextID
	r.rows[e.ID] = *e
	return nil
}

func (r memTimeEntryRepo) FindByID(_ context.Context, id int64) (*model.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r memTimeEntryRepo) FindActiveByUser(_ context.Context, userID uuid.UUID) (*model.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.UserID == userID && e.Status == model.TimeEntryActive {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memTimeEntryRepo) Update(_ context.Context, e *model.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[e.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.rows[e.ID] = *e
	return nil
}

func (r memTimeEntryRepo) CloseActive(_ context.Context, e *model.TimeEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[e.ID]
	if !ok || cur.Status != model.TimeEntryActive {
		return false, nil
	}
	r.rows[e.ID] = *e
	return true, nil
}

func (r memTimeEntryRepo) ListByUser(_ context.Context, userID uuid.UUID, from, to time.Time) ([]model.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TimeEntry
	for _, e := range r.rows {
		if e.UserID == userID && !e.ClockInTime.Before(from) && e.ClockInTime.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClockInTime.After(out[j].ClockInTime) })
	return out, nil
}

// email logs

type memEmailLogRepo struct{ *store[model.EmailLog] }

func (r memEmailLogRepo) Create(_ context.Context, l *model.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.ID = r.nextID
	r.rows[l.ID] = *l
	return nil
}

func (r memEmailLogRepo) FindByID(_ context.Context, id int64) (*model.EmailLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r memEmailLogRepo) Update(_ context.Context, l *model.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[l.ID] = *l
	return nil
}

func (r memEmailLogRepo) ListRetryable(_ context.Context, now time.Time, limit int) ([]model.EmailLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.EmailLog
	for _, l := range r.sorted() {
		if l.Status == model.EmailFailed && l.NextRetryAt != nil && !l.NextRetryAt.After(now) {
			out = append(out, l)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// sequences

type memSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int
	// stored lists the identifiers persisted for a prefix.
	stored func(prefix string) []string
}

func counterKey(prefix string, year int) string { return prefix + "/" + strconv.Itoa(year) }

func (r *memSequenceRepo) Increment(_ context.Context, prefix string, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := counterKey(prefix, year)
	r.counters[k]++
	return r.counters[k], nil
}

func (r *memSequenceRepo) Raise(_ context.Context, prefix string, year int, atLeast int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := counterKey(prefix, year)
	if r.counters[k] < atLeast {
		r.counters[k] = atLeast
	}
	return nil
}

func (r *memSequenceRepo) LatestNumber(_ context.Context, prefix, stem string) (string, error) {
	latest := ""
	for _, n := range r.stored(prefix) {
		if strings.HasPrefix(n, stem) && n > latest {
			latest = n
		}
	}
	return latest, nil
}

// ── Other collaborators ──────────────────────────────────────────────────────

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newMemCache() *memCache { return &memCache{entries: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dest)
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = b
	c.mu.Unlock()
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type memQueue struct {
	payloads []any
	err      error
}

func (q *memQueue) EnqueueEmail(_ context.Context, payload any) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, payload)
	return nil
}

// ── Test environment ─────────────────────────────────────────────────────────

var testStart = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	clk   *clock.Manual
	bus   *event.Bus
	tx    *memTx
	cache *memCache
	queue *memQueue

	users    *memUserRepo
	orders   memJobOrderRepo
	quotes   *memQuoteRepo
	jobs     *memJobRepo
	invoices *memInvoiceRepo
	rates    memRateRepo
	items    memServiceItemRepo
	entries  memTimeEntryRepo
	emails   memEmailLogRepo
	seqRepo  *memSequenceRepo

	seq      SequenceService
	userSvc  UserService
	orderSvc JobOrderService
	rateSvc  RateService
	itemSvc  ServiceItemService
	quoteSvc QuoteService
	jobSvc   JobService
	invSvc   InvoiceService
	timeSvc  TimeEntryService
	notify   NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		clk:   clock.NewManual(testStart),
		bus:   event.NewBus(),
		cache: newMemCache(),
		queue: &memQueue{},
		users: newMemUserRepo(),
	}
	e.orders = memJobOrderRepo{newStore[model.JobOrder]()}
	e.quotes = &memQuoteRepo{quotes: newStore[model.Quote](), lines: newStore[model.QuoteLineItem](), orders: e.orders}
	e.jobs = &memJobRepo{jobs: newStore[model.Job](), assignments: newStore[model.JobAssignment](), orders: e.orders}
	e.invoices = &memInvoiceRepo{store: newStore[model.Invoice]()}
	e.rates = memRateRepo{newStore[model.EmployeeRate]()}
	e.items = memServiceItemRepo{newStore[model.ServiceItem]()}
	e.entries = memTimeEntryRepo{newStore[model.TimeEntry]()}
	e.emails = memEmailLogRepo{newStore[model.EmailLog]()}
	e.seqRepo = &memSequenceRepo{counters: make(map[string]int), stored: e.storedNumbers}
	e.tx = &memTx{parts: []snapshotter{e.users, e.orders, e.quotes, e.jobs, e.invoices, e.rates, e.entries}}

	NewOrderOrchestrator(e.orders, e.clk).Register(e.bus)

	e.seq = NewSequenceService(e.seqRepo, e.tx, e.clk)
	e.userSvc = NewUserService(e.users, e.seq, e.tx, e.clk)
	e.orderSvc = NewJobOrderService(e.orders, e.users, e.seq, e.clk)
	e.rateSvc = NewRateService(e.rates, e.users, e.items, e.tx, e.cache, time.Hour, e.clk)
	e.itemSvc = NewServiceItemService(e.items, e.clk)
	e.quoteSvc = NewQuoteService(e.quotes, e.orders, e.items, e.rateSvc, e.seq, e.tx, e.bus, e.clk)
	e.jobSvc = NewJobService(e.jobs, e.orders, e.users, e.seq, e.tx, e.bus, e.clk)
	e.invSvc = NewInvoiceService(e.invoices, e.quotes, e.seq, e.tx, e.clk)
	e.timeSvc = NewTimeEntryService(e.entries, e.users, e.jobs, e.tx, e.clk)
	e.notify = NewNotificationService(e.emails, e.quotes, e.invoices, e.users, e.queue, "billing@example.com", "Acme Staffing", e.clk)
	return e
}

func (e *testEnv) storedNumbers(prefix string) []string {
	switch prefix {
	case KindJobOrder.Prefix:
		return e.orders.numbers()
	case KindQuote.Prefix:
		return e.quotes.numbers()
	case KindJob.Prefix:
		return e.jobs.numbers()
	case KindInvoice.Prefix:
		return e.invoices.numbers()
	case KindEmployee.Prefix:
		return e.users.numbers()
	}
	return nil
}

// addUser stores a user directly, bypassing numbering.
func (e *testEnv) addUser(t *testing.T, first string, roles ...string) *model.User {
	t.Helper()
	u := &model.User{
		ID:             uuid.New(),
		EmployeeNumber: "T-" + first,
		FirstName:      first,
		LastName:       "Tester",
		Email:          strings.ToLower(first) + "@example.com",
		IsActive:       true,
	}
	for _, r := range e.users.roles {
		if slices.Contains(roles, r.Name) {
			u.Roles = append(u.Roles, r)
		}
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("add user: %v", err)
	}
	return u
}

func (e *testEnv) addOrder(t *testing.T, client *model.User, status model.JobOrderStatus) *model.JobOrder {
	t.Helper()
	jo := &model.JobOrder{
		OrderNumber: "JO-T-" + uuid.NewString()[:8],
		ClientID:    client.ID,
		EventName:   "Spring Expo",
		SiteName:    "Hall A",
		SiteAddress: "1 Fairground Rd",
		StartDate:   testStart,
		EndDate:     testStart.Add(48 * time.Hour),
		Status:      status,
	}
	if err := e.orders.Create(context.Background(), jo); err != nil {
		t.Fatalf("add order: %v", err)
	}
	return jo
}

func (e *testEnv) addItem(t *testing.T, name string, price, cost int64) *model.ServiceItem {
	t.Helper()
	item := &model.ServiceItem{
		Name:      name,
		Type:      model.ServiceNormalTime,
		BasePrice: decimal.NewFromInt(price),
		BaseCost:  decimal.NewFromInt(cost),
		IsActive:  true,
	}
	if err := e.items.Create(context.Background(), item); err != nil {
		t.Fatalf("add item: %v", err)
	}
	return item
}

func (e *testEnv) orderStatus(t *testing.T, id int64) model.JobOrderStatus {
	t.Helper()
	jo, err := e.orders.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load order: %v", err)
	}
	return jo.Status
}

var errBoom = errors.New("boom")
