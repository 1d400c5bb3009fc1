package leave

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu       sync.Mutex
	seq      int
	requests map[string]leave.Request
}

func newMemoryRepo(seed ...leave.Request) *memoryRepo {
	m := &memoryRepo{requests: make(map[string]leave.Request)}
	for _, r := range seed {
		_, _ = m.Create(context.Background(), r)
	}
	return m
}

func (m *memoryRepo) Create(ctx context.Context, r leave.Request) (leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	if r.ID == "" {
		r.ID = fmt.Sprintf("lr-%d", m.seq)
	}
	m.requests[r.ID] = r
	return r, nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id string) (leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}
	return r, nil
}

func (m *memoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]leave.Request, error) {
	return m.list(func(r leave.Request) bool { return r.OwnerID == ownerID }), nil
}

func (m *memoryRepo) List(ctx context.Context, filter leave.ListFilter) ([]leave.Request, error) {
	return m.list(func(r leave.Request) bool { return filter.Status == nil || r.Status == *filter.Status }), nil
}

func (m *memoryRepo) list(keep func(leave.Request) bool) []leave.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []leave.Request
	for _, r := range m.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out
}

func (m *memoryRepo) UpdateStatus(ctx context.Context, id string, status leave.Status, decidedAt time.Time) (leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}
	if r.Status != leave.StatusPending {
		return leave.Request{}, leave.ErrAlreadyProcessed
	}
	r.Status = status
	r.DecidedAt = &decidedAt
	m.requests[id] = r
	return r, nil
}

func (m *memoryRepo) DeletePending(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok || r.Status != leave.StatusPending {
		return leave.ErrNotPending
	}
	delete(m.requests, id)
	return nil
}

type countingTransactor struct {
	calls int
}

func (c *countingTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	c.calls++
	return fn(ctx)
}

func submitInput(start, end time.Time, typ leave.Type) SubmitInput {
	return SubmitInput{
		OwnerID:      "u1",
		EmployeeID:   "e1",
		EmployeeName: "Asha",
		Type:         typ,
		StartDate:    start,
		EndDate:      end,
		Reason:       "family trip",
	}
}

func TestWorkflow_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a pending request with business days", func(t *testing.T) {
		tx := &countingTransactor{}
		w := NewWorkflow(newMemoryRepo(), tx, DefaultPolicy())

		r, err := w.Submit(ctx, submitInput(date(2023, 4, 15), date(2023, 4, 18), leave.TypeVacation))
		require.NoError(t, err)

		assert.NotEmpty(t, r.ID)
		assert.Equal(t, leave.StatusPending, r.Status)
		assert.Equal(t, leave.TypeVacation, r.Type)
		assert.Equal(t, 2, r.Days)
		assert.Equal(t, 0, r.LossOfPayDays)
		assert.Nil(t, r.DecidedAt)
		assert.Equal(t, 1, tx.calls)
	})

	t.Run("end before start", func(t *testing.T) {
		w := NewWorkflow(newMemoryRepo(), nil, DefaultPolicy())

		_, err := w.Submit(ctx, submitInput(date(2023, 4, 18), date(2023, 4, 17), leave.TypeVacation))
		assert.ErrorIs(t, err, leave.ErrInvalidDateRange)
	})

	t.Run("weekend only range", func(t *testing.T) {
		w := NewWorkflow(newMemoryRepo(), nil, DefaultPolicy())

		_, err := w.Submit(ctx, submitInput(date(2023, 4, 15), date(2023, 4, 16), leave.TypeVacation))
		assert.ErrorIs(t, err, leave.ErrInvalidDateRange)
	})

	t.Run("blank fields", func(t *testing.T) {
		repo := newMemoryRepo()
		w := NewWorkflow(repo, nil, DefaultPolicy())

		in := submitInput(date(2023, 4, 17), date(2023, 4, 17), leave.TypeVacation)
		in.Reason = " "
		in.EmployeeName = ""
		_, err := w.Submit(ctx, in)

		require.ErrorIs(t, err, leave.ErrMissingField)
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, []string{"employee_name", "reason"}, []string{verrs[0].Field, verrs[1].Field})
		assert.Empty(t, repo.requests)
	})

	t.Run("insufficient balance converts to loss of pay", func(t *testing.T) {
		var seed []leave.Request
		// 17 approved days spread so no month is near the candidate month.
		for i, days := range []int{5, 5, 5, 2} {
			r := approved(leave.TypeVacation, date(2023, time.Month(i+1), 2), days)
			r.OwnerID = "u1"
			seed = append(seed, r)
		}
		w := NewWorkflow(newMemoryRepo(seed...), nil, DefaultPolicy())

		// Mon 2023-06-05 to Fri 2023-06-09 is 5 business days, 3 remain.
		r, err := w.Submit(ctx, submitInput(date(2023, 6, 5), date(2023, 6, 9), leave.TypeVacation))
		require.NoError(t, err)

		assert.Equal(t, leave.TypeLossOfPay, r.Type)
		assert.Equal(t, 5, r.Days)
		assert.Equal(t, 5, r.LossOfPayDays)
	})

	t.Run("monthly cap needs confirmation", func(t *testing.T) {
		seed := approved(leave.TypeVacation, date(2023, 4, 3), 2)
		seed.EndDate = date(2023, 4, 4)
		seed.OwnerID = "u1"
		repo := newMemoryRepo(seed)
		w := NewWorkflow(repo, nil, DefaultPolicy())

		in := submitInput(date(2023, 4, 20), date(2023, 4, 20), leave.TypeSickLeave)
		_, err := w.Submit(ctx, in)

		require.ErrorIs(t, err, leave.ErrLossOfPayConfirmationRequired)
		var confirm *leave.ConfirmationError
		require.True(t, errors.As(err, &confirm))
		assert.Equal(t, "2023-04", confirm.Month)
		assert.Equal(t, 1, confirm.Evaluation.LossOfPayDays)
		assert.Equal(t, leave.TypeSickLeave, confirm.Evaluation.FinalType)
		assert.Len(t, repo.requests, 1, "nothing persisted without confirmation")

		in.ConfirmLossOfPay = true
		r, err := w.Submit(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, leave.TypeSickLeave, r.Type)
		assert.Equal(t, 1, r.Days)
		assert.Equal(t, 1, r.LossOfPayDays)
	})

	t.Run("overlapping pending request", func(t *testing.T) {
		w := NewWorkflow(newMemoryRepo(), nil, DefaultPolicy())

		_, err := w.Submit(ctx, submitInput(date(2023, 4, 17), date(2023, 4, 18), leave.TypeVacation))
		require.NoError(t, err)

		_, err = w.Submit(ctx, submitInput(date(2023, 4, 18), date(2023, 4, 18), leave.TypeSickLeave))
		assert.ErrorIs(t, err, leave.ErrOverlappingRequest)
	})

	t.Run("rejected requests do not block the range", func(t *testing.T) {
		seed := leave.Request{OwnerID: "u1", Type: leave.TypeVacation, StartDate: date(2023, 4, 17), EndDate: date(2023, 4, 18), Days: 2, Status: leave.StatusRejected}
		w := NewWorkflow(newMemoryRepo(seed), nil, DefaultPolicy())

		_, err := w.Submit(ctx, submitInput(date(2023, 4, 17), date(2023, 4, 17), leave.TypeVacation))
		assert.NoError(t, err)
	})
}

func TestWorkflow_SetStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2023, 4, 10, 12, 0, 0, 0, time.UTC)

	newPending := func(t *testing.T) (*Workflow, leave.Request) {
		w := NewWorkflow(newMemoryRepo(), nil, DefaultPolicy())
		r, err := w.Submit(ctx, submitInput(date(2023, 4, 17), date(2023, 4, 17), leave.TypeVacation))
		require.NoError(t, err)
		return w, r
	}

	t.Run("approve", func(t *testing.T) {
		w, r := newPending(t)

		updated, err := w.SetStatus(ctx, r.ID, leave.StatusApproved, now)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, updated.Status)
		require.NotNil(t, updated.DecidedAt)
		assert.Equal(t, now, *updated.DecidedAt)
	})

	t.Run("invalid status", func(t *testing.T) {
		w, r := newPending(t)

		_, err := w.SetStatus(ctx, r.ID, leave.StatusPending, now)
		assert.ErrorIs(t, err, leave.ErrInvalidStatus)
		_, err = w.SetStatus(ctx, r.ID, leave.Status("Cancelled"), now)
		assert.ErrorIs(t, err, leave.ErrInvalidStatus)
	})

	t.Run("unknown id", func(t *testing.T) {
		w, _ := newPending(t)

		_, err := w.SetStatus(ctx, "missing", leave.StatusRejected, now)
		assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
	})

	t.Run("terminal states cannot change", func(t *testing.T) {
		w, r := newPending(t)

		_, err := w.SetStatus(ctx, r.ID, leave.StatusRejected, now)
		require.NoError(t, err)

		_, err = w.SetStatus(ctx, r.ID, leave.StatusApproved, now)
		assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)

		stored, err := w.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, stored.Status)
	})
}

func TestWorkflow_Cancel(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2023, 4, 10, 12, 0, 0, 0, time.UTC)

	t.Run("pending request is removed", func(t *testing.T) {
		repo := newMemoryRepo()
		w := NewWorkflow(repo, nil, DefaultPolicy())
		r, err := w.Submit(ctx, submitInput(date(2023, 4, 17), date(2023, 4, 17), leave.TypeVacation))
		require.NoError(t, err)

		require.NoError(t, w.Cancel(ctx, r.ID, "u1"))

		_, err = w.Get(ctx, r.ID)
		assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
	})

	t.Run("approved request cannot be cancelled", func(t *testing.T) {
		w := NewWorkflow(newMemoryRepo(), nil, DefaultPolicy())
		r, err := w.Submit(ctx, submitInput(date(2023, 4, 17), date(2023, 4, 17), leave.TypeVacation))
		require.NoError(t, err)
		_, err = w.SetStatus(ctx, r.ID, leave.StatusApproved, now)
		require.NoError(t, err)

		err = w.Cancel(ctx, r.ID, "u1")
		assert.ErrorIs(t, err, leave.ErrNotPending)

		_, err = w.Get(ctx, r.ID)
		assert.NoError(t, err)
	})

	t.Run("other owner is unauthorized", func(t *testing.T) {
		w := NewWorkflow(newMemoryRepo(), nil, DefaultPolicy())
		r, err := w.Submit(ctx, submitInput(date(2023, 4, 17), date(2023, 4, 17), leave.TypeVacation))
		require.NoError(t, err)

		err = w.Cancel(ctx, r.ID, "u2")
		assert.ErrorIs(t, err, leave.ErrUnauthorized)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := NewWorkflow(newMemoryRepo(), nil, DefaultPolicy())

		err := w.Cancel(ctx, "missing", "u1")
		assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
	})
}

func TestWorkflow_ListsAndBalance(t *testing.T) {
	ctx := context.Background()
	seed := []leave.Request{
		{OwnerID: "u1", Type: leave.TypeVacation, StartDate: date(2023, 3, 6), EndDate: date(2023, 3, 7), Days: 2, Status: leave.StatusApproved},
		{OwnerID: "u1", Type: leave.TypeSickLeave, StartDate: date(2023, 4, 3), EndDate: date(2023, 4, 3), Days: 1, Status: leave.StatusPending},
		{OwnerID: "u2", Type: leave.TypeVacation, StartDate: date(2023, 4, 3), EndDate: date(2023, 4, 3), Days: 1, Status: leave.StatusPending},
	}
	w := NewWorkflow(newMemoryRepo(seed...), nil, DefaultPolicy())

	mine, err := w.ListMine(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, date(2023, 4, 3), mine[0].StartDate)

	pending := leave.StatusPending
	all, err := w.ListAll(ctx, &pending)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	everything, err := w.ListAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, everything, 3)

	b, err := w.Balance(ctx, "u1", date(2023, 5, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, b.Used)
	assert.Equal(t, 18, b.Remaining)
	assert.Equal(t, map[string]int{"2023-03": 2}, b.MonthlyUsage)
}
