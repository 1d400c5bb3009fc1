package accounting

import (
	"context"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/geo"
	attendanceService "github.com/cmlabs-hris/presence-ledger-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/presence-ledger-go/internal/service/leave"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "accounting"

var (
	_ attendance.AttendanceService = (*Service)(nil)
	_ leave.LeaveService           = (*Service)(nil)
	_ dashboard.DashboardService   = (*Service)(nil)
)

// Service is the single entry point handlers call. It composes the geofence,
// the attendance ledger and the leave workflow.
type Service struct {
	ledger   *attendanceService.Ledger
	workflow *leaveService.Workflow
	site     geo.Site
	now      func() time.Time
	locks    *ownerLocks
	tracer   trace.Tracer
}

// NewService wires the façade. A nil clock defaults to time.Now. Readings are
// moved into the ledger's timezone so day and accrual-year boundaries follow it.
func NewService(ledger *attendanceService.Ledger, workflow *leaveService.Workflow, site geo.Site, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	loc := ledger.Location()
	return &Service{
		ledger:   ledger,
		workflow: workflow,
		site:     site,
		now:      func() time.Time { return clock().In(loc) },
		locks:    newOwnerLocks(),
		tracer:   otel.Tracer(tracerName),
	}
}

func (s *Service) Location() *time.Location {
	return s.ledger.Location()
}

func (s *Service) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "accounting."+name)
}

// fail records err on span and returns it unchanged.
func fail(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
