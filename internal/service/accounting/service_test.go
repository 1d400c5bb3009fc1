package accounting

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/geo"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/validator"
	"github.com/cmlabs-hris/presence-ledger-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/presence-ledger-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/presence-ledger-go/internal/service/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var office = geo.Site{
	Name:         "HQ",
	Center:       geo.Point{Latitude: 12.9981709, Longitude: 77.5999077},
	RadiusMeters: 100,
}

// fixedClock is a settable clock shared by the service under test.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestService(t *testing.T, start time.Time) (*Service, *fixedClock) {
	t.Helper()
	return newTestServiceIn(t, start, time.UTC)
}

func newTestServiceIn(t *testing.T, start time.Time, loc *time.Location) (*Service, *fixedClock) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clock := &fixedClock{now: start}
	ledger := attendanceService.NewLedger(sqlite.NewAttendanceRepository(store), loc)
	workflow := leaveService.NewWorkflow(sqlite.NewLeaveRequestRepository(store), store, leaveService.DefaultPolicy())
	return NewService(ledger, workflow, office, clock.Now), clock
}

func ptr(f float64) *float64 { return &f }

func clockInAt(lat, lon float64) attendance.ClockInRequest {
	return attendance.ClockInRequest{
		OwnerID:      "u1",
		EmployeeID:   "EMP-001",
		EmployeeName: "Asha",
		Latitude:     ptr(lat),
		Longitude:    ptr(lon),
	}
}

func TestService_ClockInAndOut(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestService(t, time.Date(2023, 4, 17, 9, 0, 0, 0, time.UTC))

	in, err := s.ClockIn(ctx, clockInAt(12.9985, 77.6000))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusInProgress, in.Status)
	assert.Equal(t, "-", in.WorkedDuration)
	assert.Equal(t, "12.998500,77.600000", in.EnteredLocation)

	clock.Set(time.Date(2023, 4, 17, 17, 20, 0, 0, time.UTC))
	out, err := s.ClockOut(ctx, attendance.ClockOutRequest{
		OwnerID:   "u1",
		RecordID:  in.ID,
		Latitude:  ptr(12.9990),
		Longitude: ptr(77.6000),
	})
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusPresent, out.Status)
	assert.Equal(t, "8h 20m", out.WorkedDuration)
	require.NotNil(t, out.TotalHoursWorked)
	assert.InDelta(t, 8.0+1.0/3.0, *out.TotalHoursWorked, 1e-9)
	require.NotNil(t, out.FarDistance)
	assert.InDelta(t, 93, *out.FarDistance, 2)

	_, err = s.ClockOut(ctx, attendance.ClockOutRequest{OwnerID: "u1", RecordID: in.ID, Latitude: ptr(12.9990), Longitude: ptr(77.6000)})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)
}

func TestService_ClockIn_OutsideRadiusLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, time.Date(2023, 4, 17, 9, 0, 0, 0, time.UTC))

	_, err := s.ClockIn(ctx, clockInAt(12.9981709+0.002, 77.5999077))
	require.ErrorIs(t, err, attendance.ErrOutsideAllowedRadius)

	var radiusErr *attendance.RadiusError
	require.True(t, errors.As(err, &radiusErr))
	assert.InDelta(t, 222, radiusErr.DistanceMeters, 1)
	assert.Equal(t, 100.0, radiusErr.RadiusMeters)

	today, err := s.GetToday(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, today)
}

func TestService_ClockIn_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, time.Date(2023, 4, 17, 9, 0, 0, 0, time.UTC))

	_, err := s.ClockIn(ctx, clockInAt(91, 77.6))
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)

	req := clockInAt(12.9985, 77.6)
	req.Longitude = nil
	_, err = s.ClockIn(ctx, req)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "longitude", verrs[0].Field)
}

func TestService_ClockIn_DuplicateUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, time.Date(2023, 4, 17, 9, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ClockIn(ctx, clockInAt(12.9985, 77.6000))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrDuplicateClockIn)
	}
	assert.Equal(t, 1, succeeded)
}

func TestService_ClockOut_ByOtherOwner(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestService(t, time.Date(2023, 4, 17, 9, 0, 0, 0, time.UTC))

	in, err := s.ClockIn(ctx, clockInAt(12.9985, 77.6000))
	require.NoError(t, err)

	clock.Set(time.Date(2023, 4, 17, 18, 0, 0, 0, time.UTC))
	_, err = s.ClockOut(ctx, attendance.ClockOutRequest{OwnerID: "u2", RecordID: in.ID, Latitude: ptr(12.9985), Longitude: ptr(77.6)})
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

func TestService_HistoryAndSummary(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestService(t, time.Date(2023, 4, 3, 10, 30, 0, 0, time.UTC))

	in, err := s.ClockIn(ctx, clockInAt(12.9985, 77.6000))
	require.NoError(t, err)
	clock.Set(time.Date(2023, 4, 3, 19, 0, 0, 0, time.UTC))
	_, err = s.ClockOut(ctx, attendance.ClockOutRequest{OwnerID: "u1", RecordID: in.ID, Latitude: ptr(12.9985), Longitude: ptr(77.6)})
	require.NoError(t, err)

	clock.Set(time.Date(2023, 4, 4, 9, 0, 0, 0, time.UTC))
	_, err = s.ClockIn(ctx, clockInAt(12.9985, 77.6000))
	require.NoError(t, err)

	history, err := s.GetMyAttendance(ctx, attendance.MyAttendanceFilter{OwnerID: "u1"})
	require.NoError(t, err)
	require.Equal(t, 2, history.TotalCount)
	assert.Equal(t, attendance.StatusInProgress, history.Attendances[0].Status)
	assert.Equal(t, attendance.StatusLateArrival, history.Attendances[1].Status)

	start, end := "2023-04-03", "2023-04-03"
	narrowed, err := s.GetMyAttendance(ctx, attendance.MyAttendanceFilter{OwnerID: "u1", StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 1, narrowed.TotalCount)

	summary, err := s.GetMonthlySummary(ctx, attendance.SummaryFilter{OwnerID: "u1", Month: "2023-04"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, 1, summary.Counts[attendance.StatusLateArrival])
	assert.Equal(t, 1, summary.Counts[attendance.StatusInProgress])

	_, err = s.GetMonthlySummary(ctx, attendance.SummaryFilter{OwnerID: "u1", Month: "April"})
	assert.Error(t, err)
}

func submit(start, end string, typ leave.Type) leave.SubmitLeaveRequest {
	return leave.SubmitLeaveRequest{
		OwnerID:      "u1",
		EmployeeID:   "EMP-001",
		EmployeeName: "Asha",
		LeaveType:    string(typ),
		StartDate:    start,
		EndDate:      end,
		Reason:       "family event",
	}
}

func TestService_LeaveLifecycle(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestService(t, time.Date(2023, 4, 10, 9, 0, 0, 0, time.UTC))

	first, err := s.SubmitRequest(ctx, submit("2023-04-15", "2023-04-18", leave.TypeVacation))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Days)
	assert.Equal(t, leave.StatusPending, first.Status)

	clock.Set(time.Date(2023, 4, 11, 9, 0, 0, 0, time.UTC))
	approved, err := s.UpdateStatus(ctx, leave.UpdateStatusRequest{ID: first.ID, Status: "Approved"})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedAt)

	balance, err := s.GetMyBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, balance.Used)
	assert.Equal(t, 18, balance.Remaining)
	assert.Equal(t, map[string]int{"2023-04": 2}, balance.MonthlyUsage)

	// The month is at its cap, a further day needs confirmation.
	third := submit("2023-04-20", "2023-04-20", leave.TypeSickLeave)
	_, err = s.SubmitRequest(ctx, third)
	require.ErrorIs(t, err, leave.ErrLossOfPayConfirmationRequired)

	third.ConfirmLossOfPay = true
	confirmed, err := s.SubmitRequest(ctx, third)
	require.NoError(t, err)
	assert.Equal(t, leave.TypeSickLeave, confirmed.LeaveType)
	assert.Equal(t, 1, confirmed.LossOfPayDays)

	assert.ErrorIs(t, s.CancelRequest(ctx, leave.CancelLeaveRequest{ID: approved.ID, OwnerID: "u1"}), leave.ErrNotPending)
	assert.ErrorIs(t, s.CancelRequest(ctx, leave.CancelLeaveRequest{ID: confirmed.ID, OwnerID: "u2"}), leave.ErrUnauthorized)
	require.NoError(t, s.CancelRequest(ctx, leave.CancelLeaveRequest{ID: confirmed.ID, OwnerID: "u1"}))

	_, err = s.GetRequest(ctx, leave.GetLeaveRequest{ID: confirmed.ID, OwnerID: "u1"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	_, err = s.GetRequest(ctx, leave.GetLeaveRequest{ID: approved.ID, OwnerID: "u2"})
	assert.ErrorIs(t, err, leave.ErrUnauthorized)
	got, err := s.GetRequest(ctx, leave.GetLeaveRequest{ID: approved.ID, OwnerID: "admin", IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, approved.ID, got.ID)

	mine, err := s.ListMyRequests(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, mine.TotalCount)

	status := "Pending"
	pending, err := s.ListRequests(ctx, leave.ListLeaveRequestFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 0, pending.TotalCount)

	_, err = s.UpdateStatus(ctx, leave.UpdateStatusRequest{ID: approved.ID, Status: "Rejected"})
	assert.ErrorIs(t, err, leave.ErrAlreadyProcessed)
	_, err = s.UpdateStatus(ctx, leave.UpdateStatusRequest{ID: approved.ID, Status: "Done"})
	assert.ErrorIs(t, err, leave.ErrInvalidStatus)
}

func TestService_GetMyBalance_UsesConfiguredTimezone(t *testing.T) {
	ctx := context.Background()
	ist := time.FixedZone("IST", 5*3600+1800)
	// 2023-12-31 20:00 UTC is already 2024-01-01 in IST.
	s, _ := newTestServiceIn(t, time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC), ist)

	created, err := s.SubmitRequest(ctx, submit("2024-01-02", "2024-01-02", leave.TypeVacation))
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, leave.UpdateStatusRequest{ID: created.ID, Status: "Approved"})
	require.NoError(t, err)

	balance, err := s.GetMyBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, balance.Used)
	assert.Equal(t, 19, balance.Remaining)
}

func TestService_SubmitRequest_Validation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, time.Date(2023, 4, 10, 9, 0, 0, 0, time.UTC))

	_, err := s.SubmitRequest(ctx, submit("2023-04-18", "2023-04-17", leave.TypeVacation))
	assert.ErrorIs(t, err, leave.ErrInvalidDateRange)

	missing := submit("2023-04-17", "2023-04-17", leave.TypeVacation)
	missing.Reason = ""
	_, err = s.SubmitRequest(ctx, missing)
	assert.ErrorIs(t, err, leave.ErrMissingField)

	// Mon to Fri is 5 days, above the 2 day monthly cap.
	_, err = s.SubmitRequest(ctx, submit("2023-06-05", "2023-06-09", leave.TypeVacation))
	var confirm *leave.ConfirmationError
	require.True(t, errors.As(err, &confirm))
	assert.Equal(t, 3, confirm.Evaluation.LossOfPayDays)

	mine, err := s.ListMyRequests(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, mine.TotalCount, "rejected submissions persist nothing")
}

func TestService_GetMyDashboard(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, time.Date(2023, 4, 17, 9, 0, 0, 0, time.UTC))

	empty, err := s.GetMyDashboard(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, empty.Today)
	assert.Equal(t, dashboard.NotClockedIn, empty.TodayStatus)
	assert.Equal(t, 20, empty.LeaveBalance.Remaining)

	_, err = s.ClockIn(ctx, clockInAt(12.9985, 77.6000))
	require.NoError(t, err)
	_, err = s.SubmitRequest(ctx, submit("2023-05-02", "2023-05-02", leave.TypeVacation))
	require.NoError(t, err)

	got, err := s.GetMyDashboard(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.Today)
	assert.Equal(t, attendance.StatusInProgress, got.TodayStatus)
	assert.Equal(t, 1, got.MonthlySummary.TotalRecords)
	assert.Equal(t, 1, got.PendingRequests)
	assert.Equal(t, "2023-04-17T09:00:00Z", got.GeneratedAt)
}
