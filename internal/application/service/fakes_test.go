package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// passthroughTx runs fn without a real transaction
type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*entity.Order
	saveErr error
	// deadlines seen by GetByID and List
	reads []time.Time
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*entity.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteRead(ctx)
	o, ok := r.orders[id]
	if !ok {
		return nil, domainwf.NewNotFoundError("order", id)
	}
	return o.Clone(), nil
}

func (r *fakeOrderRepo) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == number {
			return o.Clone(), nil
		}
	}
	return nil, domainwf.NewNotFoundError("order", number)
}

func (r *fakeOrderRepo) List(ctx context.Context, filter port.OrderFilter) ([]*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteRead(ctx)
	var out []*entity.Order
	for _, o := range r.orders {
		if filter.Department != "" && o.CurrentDepartment != filter.Department {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, nil
}

func (r *fakeOrderRepo) Save(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return domainwf.NewNotFoundError("order", id)
	}
	delete(r.orders, id)
	return nil
}

// noteRead records the caller's deadline. The caller holds mu.
func (r *fakeOrderRepo) noteRead(ctx context.Context) {
	if deadline, ok := ctx.Deadline(); ok {
		r.reads = append(r.reads, deadline)
	}
}

// readDeadlines returns the recorded deadlines and clears them
func (r *fakeOrderRepo) readDeadlines() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.reads
	r.reads = nil
	return out
}

func (r *fakeOrderRepo) stored(id string) *entity.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id].Clone()
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		c := *u
		r.users[u.ID] = &c
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domainwf.NewNotFoundError("user", id)
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domainwf.NewNotFoundError("user", email)
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, user *entity.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domainwf.NewNotFoundError("user", user.ID)
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	items     []*entity.Notification
	createErr error
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.items = append(r.items, n)
	return nil
}

func (r *fakeNotificationRepo) ListForDepartment(ctx context.Context, department entity.Department, limit int) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.items {
		if department == "" || n.AddressedTo(department) {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			if !n.IsReadBy(userID) {
				n.ReadBy = append(n.ReadBy, userID)
			}
			return nil
		}
	}
	return domainwf.NewNotFoundError("notification", id)
}

func (r *fakeNotificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// mockSink mocks port.NotificationSink
type mockSink struct {
	mock.Mock
}

func (m *mockSink) Notify(ctx context.Context, n *entity.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

var errStoreDown = errors.New("store unavailable")
