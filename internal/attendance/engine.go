package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"
)

// ErrDuplicateAttendance is returned when the tuple is already Present. A
// second scan by the same person is the expected way to hit this, so callers
// treat it as a conflict, not a system error.
var ErrDuplicateAttendance = errors.New("attendance already recorded for this tuple")

type DBLayer interface {
	GetAttendance(ctx context.Context, memberID, kegiatanID, rangkaianID int64, tanggal string) (*models.Attendance, error)
	InsertAttendance(ctx context.Context, attendance *models.Attendance) error
	UpdateAttendanceStatus(ctx context.Context, attendance *models.Attendance) error
	IsUniqueViolation(err error) bool
}

type Broadcaster interface {
	EmitAttendanceUpdate(update models.AttendanceUpdate)
}

type Publisher interface {
	PublishAttendanceUpdated(update models.AttendanceUpdate) error
}

// TupleLock is a best-effort cross-process guard against two devices scanning
// the same code at once. The database unique index stays the authority; the
// lock only turns most races into a cheap early rejection.
type TupleLock interface {
	LockTuple(ctx context.Context, key, token string) (bool, error)
	UnlockTuple(ctx context.Context, key, token string) error
}

// ScanInput is everything the engine needs to move one attendance tuple.
// Validation, field matching and admission have already happened upstream.
type ScanInput struct {
	Member      *models.Member
	KegiatanID  int64
	RangkaianID int64
	Tanggal     string
	RawPayload  string
	Latitude    *float64
	Longitude   *float64
}

// Engine is the state machine per (member, kegiatan, rangkaian, tanggal)
// tuple: NoRecord→Present inserts, Absent→Present updates in place,
// Present→Present is rejected.
type Engine struct {
	DB     DBLayer
	SSE    Broadcaster
	Kafka  Publisher
	Lock   TupleLock
	Logger *logger.Logger
}

func NewEngine(db DBLayer, sse Broadcaster, kafka Publisher, lock TupleLock, log *logger.Logger) *Engine {
	return &Engine{DB: db, SSE: sse, Kafka: kafka, Lock: lock, Logger: log}
}

// RecordScan applies one validated, admitted scan. It re-checks for an
// existing row itself, so retries of an already-Present tuple get the same
// rejection every time.
func (e *Engine) RecordScan(ctx context.Context, input ScanInput) (*models.Attendance, error) {
	tupleKey := fmt.Sprintf("%d:%d:%d:%s", input.Member.ID, input.KegiatanID, input.RangkaianID, input.Tanggal)
	token := uuid.New().String()

	if e.Lock != nil {
		acquired, err := e.Lock.LockTuple(ctx, tupleKey, token)
		if err != nil {
			// Redis being down must not block check-in; the unique index
			// still catches real duplicates.
			if e.Logger != nil {
				e.Logger.Warn("SCAN", fmt.Sprintf("tuple lock unavailable for %s: %v", tupleKey, err))
			}
		} else if !acquired {
			return nil, ErrDuplicateAttendance
		} else {
			defer func() {
				_ = e.Lock.UnlockTuple(context.Background(), tupleKey, token)
			}()
		}
	}

	existing, err := e.DB.GetAttendance(ctx, input.Member.ID, input.KegiatanID, input.RangkaianID, input.Tanggal)
	if err != nil {
		return nil, fmt.Errorf("failed to check attendance for %s: %w", tupleKey, err)
	}

	now := time.Now()

	switch {
	case existing == nil:
		row := &models.Attendance{
			ID:          token,
			MemberID:    input.Member.ID,
			KegiatanID:  input.KegiatanID,
			RangkaianID: input.RangkaianID,
			Tanggal:     input.Tanggal,
			Status:      models.StatusPresent,
			CheckedInAt: &now,
			Method:      models.MethodQRCode,
			Latitude:    input.Latitude,
			Longitude:   input.Longitude,
			RawPayload:  input.RawPayload,
		}
		if err := e.DB.InsertAttendance(ctx, row); err != nil {
			if e.DB.IsUniqueViolation(err) {
				// Lost a race against a concurrent scan of the same tuple.
				return nil, ErrDuplicateAttendance
			}
			return nil, fmt.Errorf("failed to insert attendance for %s: %w", tupleKey, err)
		}
		e.broadcast(input, row)
		return row, nil

	case existing.Status == models.StatusPresent:
		return nil, ErrDuplicateAttendance

	default: // Absent → Present
		existing.Status = models.StatusPresent
		existing.CheckedInAt = &now
		existing.Method = models.MethodQRCode
		existing.Latitude = input.Latitude
		existing.Longitude = input.Longitude
		existing.RawPayload = input.RawPayload
		if err := e.DB.UpdateAttendanceStatus(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update attendance for %s: %w", tupleKey, err)
		}
		e.broadcast(input, existing)
		return existing, nil
	}
}

// broadcast notifies dashboards. Fire-and-forget: a dead SSE client or an
// unreachable broker never fails the check-in that already committed.
func (e *Engine) broadcast(input ScanInput, row *models.Attendance) {
	update := models.AttendanceUpdate{
		KegiatanID: input.KegiatanID,
		Tanggal:    input.Tanggal,
		Kind:       "update",
		MemberID:   input.Member.ID,
		Nama:       input.Member.NamaLengkap,
		Status:     row.Status,
	}

	if e.SSE != nil {
		e.SSE.EmitAttendanceUpdate(update)
	}

	if e.Kafka != nil {
		go func() {
			if err := e.Kafka.PublishAttendanceUpdated(update); err != nil && e.Logger != nil {
				e.Logger.Error("KAFKA", fmt.Sprintf("failed to publish attendance update: %v", err))
			}
		}()
	}
}
