// Package memory keeps every record in process memory. It backs the API when
// no DATABASE_URL is configured and is the store the use case tests run against.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type Store struct {
	mu        sync.RWMutex
	seq       int64
	users     map[string]entity.User
	companies map[string]entity.Company
	leads     map[string]entity.Lead
	tasks     map[string]entity.Task
	order     map[string]int64
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]entity.User),
		companies: make(map[string]entity.Company),
		leads:     make(map[string]entity.Lead),
		tasks:     make(map[string]entity.Task),
		order:     make(map[string]int64),
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Companies() *CompanyRepository { return &CompanyRepository{s: s} }
func (s *Store) Leads() *LeadRepository       { return &LeadRepository{s: s} }
func (s *Store) Tasks() *TaskRepository       { return &TaskRepository{s: s} }

// RawLead returns the stored lead even when it is soft deleted.
func (s *Store) RawLead(id string) (entity.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	return l, ok
}

// PingContext lets the health check treat the memory store like a database.
func (s *Store) PingContext(ctx context.Context) error {
	return ctx.Err()
}

// next must be called with mu held for writing.
func (s *Store) next(id string) {
	s.seq++
	s.order[id] = s.seq
}

// userRef and companyRef must be called with mu held.
func (s *Store) userRef(ref *entity.Ref) *entity.Ref {
	if ref == nil {
		return nil
	}
	if u, ok := s.users[ref.ID]; ok {
		return u.Ref()
	}
	return &entity.Ref{ID: ref.ID}
}

func (s *Store) companyRef(ref *entity.Ref) *entity.Ref {
	if ref == nil {
		return nil
	}
	if c, ok := s.companies[ref.ID]; ok {
		return &entity.Ref{ID: c.ID, Name: c.Name}
	}
	return &entity.Ref{ID: ref.ID}
}

func (s *Store) leadRef(ref *entity.Ref) *entity.Ref {
	if ref == nil {
		return nil
	}
	if l, ok := s.leads[ref.ID]; ok {
		return &entity.Ref{ID: l.ID, Name: l.Name, Email: l.Email}
	}
	return &entity.Ref{ID: ref.ID}
}

// refExists mirrors a foreign key of the SQL schema. Must be called with mu held.
func refExists[T any](records map[string]T, field string, ref *entity.Ref) error {
	if ref == nil {
		return nil
	}
	if _, ok := records[ref.ID]; !ok {
		return &entity.ReferenceError{Field: field}
	}
	return nil
}

func (s *Store) checkLeadRefs(lead *entity.Lead) error {
	if err := refExists(s.users, "assignedTo", lead.AssignedTo); err != nil {
		return err
	}
	return refExists(s.companies, "company", lead.Company)
}

func (s *Store) checkTaskRefs(task *entity.Task) error {
	if err := refExists(s.leads, "lead", task.Lead); err != nil {
		return err
	}
	return refExists(s.users, "assignedTo", task.AssignedTo)
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func stripRef(ref *entity.Ref) *entity.Ref {
	if ref == nil {
		return nil
	}
	return &entity.Ref{ID: ref.ID}
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return entity.ErrEmailAlreadyExists
		}
	}
	r.s.users[user.ID] = *user
	r.s.next(user.ID)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		found := u
		users = append(users, &found)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

type CompanyRepository struct{ s *Store }

func (r *CompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.companies[company.ID] = *company
	r.s.next(company.ID)
	return nil
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]*entity.Company, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	companies := make([]*entity.Company, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		found := c
		companies = append(companies, &found)
	}
	sort.Slice(companies, func(i, j int) bool {
		return r.s.newer(companies[i].ID, companies[i].CreatedAt, companies[j].ID, companies[j].CreatedAt)
	})
	return companies, nil
}

func (r *CompanyRepository) Update(ctx context.Context, company *entity.Company) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[company.ID]; !ok {
		return entity.ErrRecordNotFound
	}
	r.s.companies[company.ID] = *company
	return nil
}

// Delete clears the company reference on leads, like ON DELETE SET NULL.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[id]; !ok {
		return entity.ErrRecordNotFound
	}
	delete(r.s.companies, id)
	for leadID, l := range r.s.leads {
		if l.CompanyID() == id {
			l.Company = nil
			r.s.leads[leadID] = l
		}
	}
	return nil
}

func (r *CompanyRepository) Count(ctx context.Context) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.companies), nil
}

// newer orders by creation time descending, then insertion order descending.
// Must be called with mu held.
func (s *Store) newer(idA string, a time.Time, idB string, b time.Time) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return s.order[idA] > s.order[idB]
}

type LeadRepository struct{ s *Store }

// visibleLead is the default predicate of every lead read.
func visibleLead(l entity.Lead) bool {
	return !l.IsDeleted
}

func matchesLead(l entity.Lead, f entity.LeadFilter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(l.Name), q) && !strings.Contains(strings.ToLower(l.Email), q) {
			return false
		}
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.AssignedTo != "" && l.AssignedToID() != f.AssignedTo {
		return false
	}
	if f.CompanyID != "" && l.CompanyID() != f.CompanyID {
		return false
	}
	return true
}

// resolve must be called with mu held.
func (r *LeadRepository) resolve(l entity.Lead) *entity.Lead {
	l.AssignedTo = r.s.userRef(l.AssignedTo)
	l.Company = r.s.companyRef(l.Company)
	return &l
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkLeadRefs(lead); err != nil {
		return err
	}
	stored := *lead
	stored.AssignedTo = stripRef(lead.AssignedTo)
	stored.Company = stripRef(lead.Company)
	r.s.leads[lead.ID] = stored
	r.s.next(lead.ID)
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.leads[id]
	if !ok || !visibleLead(l) {
		return nil, nil
	}
	return r.resolve(l), nil
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, int, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entity.Lead
	for _, l := range r.s.leads {
		if visibleLead(l) && matchesLead(l, filter) {
			matched = append(matched, l)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return r.s.newer(matched[i].ID, matched[i].CreatedAt, matched[j].ID, matched[j].CreatedAt)
	})

	total := len(matched)
	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && filter.Limit < total-start {
		end = start + filter.Limit
	}

	leads := make([]*entity.Lead, 0, end-start)
	for _, l := range matched[start:end] {
		leads = append(leads, r.resolve(l))
	}
	return leads, total, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.leads[lead.ID]
	if !ok || !visibleLead(current) {
		return entity.ErrRecordNotFound
	}
	if err := r.s.checkLeadRefs(lead); err != nil {
		return err
	}
	stored := *lead
	stored.AssignedTo = stripRef(lead.AssignedTo)
	stored.Company = stripRef(lead.Company)
	stored.IsDeleted = current.IsDeleted
	stored.DeletedAt = current.DeletedAt
	stored.CreatedAt = current.CreatedAt
	r.s.leads[lead.ID] = stored
	return nil
}

func (r *LeadRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leads[id]
	if !ok || !visibleLead(l) {
		return entity.ErrRecordNotFound
	}
	l.IsDeleted = true
	l.DeletedAt = &at
	l.UpdatedAt = at
	r.s.leads[id] = l
	return nil
}

func (r *LeadRepository) Count(ctx context.Context) (int, error) {
	_, total, err := r.List(ctx, entity.LeadFilter{})
	return total, err
}

func (r *LeadRepository) CountByStatus(ctx context.Context, status entity.LeadStatus) (int, error) {
	_, total, err := r.List(ctx, entity.LeadFilter{Status: status})
	return total, err
}

type TaskRepository struct{ s *Store }

// resolve must be called with mu held.
func (r *TaskRepository) resolve(t entity.Task) *entity.Task {
	t.Lead = r.s.leadRef(t.Lead)
	t.AssignedTo = r.s.userRef(t.AssignedTo)
	return &t
}

func (r *TaskRepository) collect(match func(entity.Task) bool) []*entity.Task {
	var matched []entity.Task
	for _, t := range r.s.tasks {
		if match(t) {
			matched = append(matched, t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].DueDate.Equal(matched[j].DueDate) {
			return matched[i].DueDate.Before(matched[j].DueDate)
		}
		return r.s.order[matched[i].ID] < r.s.order[matched[j].ID]
	})
	tasks := make([]*entity.Task, 0, len(matched))
	for _, t := range matched {
		tasks = append(tasks, r.resolve(t))
	}
	return tasks
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkTaskRefs(task); err != nil {
		return err
	}
	stored := *task
	stored.Lead = stripRef(task.Lead)
	stored.AssignedTo = stripRef(task.AssignedTo)
	r.s.tasks[task.ID] = stored
	r.s.next(task.ID)
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, nil
	}
	return r.resolve(t), nil
}

func (r *TaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(t entity.Task) bool {
		return (filter.Status == "" || t.Status == filter.Status) &&
			(filter.AssignedTo == "" || t.AssignedToID() == filter.AssignedTo)
	}), nil
}

func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tasks[task.ID]
	if !ok {
		return entity.ErrRecordNotFound
	}
	if err := r.s.checkTaskRefs(task); err != nil {
		return err
	}
	stored := *task
	stored.Lead = stripRef(task.Lead)
	stored.AssignedTo = stripRef(task.AssignedTo)
	stored.CreatedAt = current.CreatedAt
	r.s.tasks[task.ID] = stored
	return nil
}

func (r *TaskRepository) UpdateIfAssignee(ctx context.Context, task *entity.Task, assigneeID string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tasks[task.ID]
	if !ok || current.AssignedToID() != assigneeID {
		return false, nil
	}
	if err := r.s.checkTaskRefs(task); err != nil {
		return false, err
	}
	stored := *task
	stored.Lead = stripRef(task.Lead)
	stored.AssignedTo = stripRef(task.AssignedTo)
	stored.CreatedAt = current.CreatedAt
	r.s.tasks[task.ID] = stored
	return true, nil
}

func (r *TaskRepository) UpdateStatusIfAssignee(ctx context.Context, id, assigneeID string, status entity.TaskStatus, at time.Time) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok || t.AssignedToID() != assigneeID {
		return false, nil
	}
	t.Status = status
	t.UpdatedAt = at
	r.s.tasks[id] = t
	return true, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return entity.ErrRecordNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func (r *TaskRepository) Count(ctx context.Context) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.tasks), nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, status entity.TaskStatus) (int, error) {
	tasks, err := r.List(ctx, entity.TaskFilter{Status: status})
	return len(tasks), err
}

func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*entity.Task, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(t entity.Task) bool {
		return !t.DueDate.Before(from) && t.DueDate.Before(to)
	}), nil
}

func (r *TaskRepository) CountDueBetween(ctx context.Context, from, to time.Time) (int, error) {
	tasks, err := r.ListDueBetween(ctx, from, to)
	return len(tasks), err
}
