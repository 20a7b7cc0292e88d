package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-attendance/internal/admission"
	"ms-attendance/internal/attendance"
	"ms-attendance/internal/cache"
	"ms-attendance/internal/fuzzy"
	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"
	"ms-attendance/internal/normalize"
	"ms-attendance/internal/utils"
)

type DBLayer interface {
	GetMemberByUniqueID(ctx context.Context, uniqueID string) (*models.Member, error)
	GetKegiatanByID(ctx context.Context, id int64) (*models.Kegiatan, error)
	GetRangkaianByID(ctx context.Context, id int64) (*models.Rangkaian, error)
}

type Recorder interface {
	RecordScan(ctx context.Context, input attendance.ScanInput) (*models.Attendance, error)
}

// Service runs the scan pipeline: payload validation, member resolution and
// field matching, event resolution, division admission, then the attendance
// transition. Every rejection happens before any mutation.
type Service struct {
	DB        DBLayer
	Validator *PayloadValidator
	Matcher   *fuzzy.Matcher
	Admission *admission.Checker
	Engine    Recorder
	Members   *cache.Bounded[string, models.Member]
	Kegiatans *cache.Bounded[int64, models.Kegiatan]
	Logger    *logger.Logger
}

func NewService(
	db DBLayer,
	validator *PayloadValidator,
	matcher *fuzzy.Matcher,
	checker *admission.Checker,
	engine Recorder,
	members *cache.Bounded[string, models.Member],
	kegiatans *cache.Bounded[int64, models.Kegiatan],
	log *logger.Logger,
) *Service {
	return &Service{
		DB:        db,
		Validator: validator,
		Matcher:   matcher,
		Admission: checker,
		Engine:    engine,
		Members:   members,
		Kegiatans: kegiatans,
		Logger:    log,
	}
}

// ProcessScan turns one raw scan into an attendance transition. Failures come
// back as *Error with a Kind the API layer maps to a status code.
func (s *Service) ProcessScan(ctx context.Context, req models.ScanRequest) (*models.ScanResult, error) {
	// Step 1: structural validation of the payload.
	payload, ok := s.Validator.Validate(req.Payload)
	if !ok {
		return nil, newError(KindMalformedPayload, "QR payload is not valid or is missing required fields")
	}

	// Step 2: resolve the member behind the opaque id.
	member, err := s.resolveMember(ctx, payload.ID)
	if err != nil {
		return nil, err
	}

	// Step 3: the scanned name and NIM must match the stored record. A
	// mismatch here smells like a forged or corrupted code.
	if !s.Matcher.Matches(member.NIM, payload.NIM, normalize.FieldIDNumber) ||
		!s.Matcher.Matches(member.NamaLengkap, payload.Nama, normalize.FieldName) {
		s.logScan("MISMATCH", payload.ID, "scanned identity does not match member record")
		return nil, newError(KindFieldMismatch, "scanned data does not match the registered member")
	}

	// Step 4: resolve the event.
	kegiatan, err := s.resolveKegiatan(ctx, req.KegiatanID)
	if err != nil {
		return nil, err
	}

	rangkaianJudul, tanggal, scanErr := s.resolveRangkaian(ctx, kegiatan, req.RangkaianID)
	if scanErr != nil {
		return nil, scanErr
	}

	// Step 5: division admission.
	admitted, allowed, err := s.Admission.Check(ctx, kegiatan.ID, member.Divisi)
	if err != nil {
		return nil, storageError("failed to check division admission", err)
	}
	if len(allowed) == 0 {
		return nil, &Error{
			Kind:    KindDivisionNotAdmitted,
			Message: "no divisions configured for this kegiatan",
			Divisi:  member.Divisi,
		}
	}
	if !admitted {
		s.logScan("REJECTED", member.UniqueID, fmt.Sprintf("division %q not admitted", member.Divisi))
		return nil, &Error{
			Kind:             KindDivisionNotAdmitted,
			Message:          fmt.Sprintf("division %q is not admitted to this kegiatan", member.Divisi),
			Divisi:           member.Divisi,
			AllowedDivisions: allowed,
		}
	}

	// Step 6: the attendance transition, the single commit point.
	row, err := s.Engine.RecordScan(ctx, attendance.ScanInput{
		Member:      member,
		KegiatanID:  kegiatan.ID,
		RangkaianID: req.RangkaianID,
		Tanggal:     tanggal,
		RawPayload:  req.Payload,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrDuplicateAttendance) {
			s.logScan("DUPLICATE", member.UniqueID, "tuple already Present")
			return nil, newError(KindDuplicateAttendance, "attendance has already been recorded for this member today")
		}
		return nil, storageError("failed to record attendance", err)
	}

	s.logScan("PRESENT", member.UniqueID, fmt.Sprintf("kegiatan %d, tanggal %s", kegiatan.ID, tanggal))

	return &models.ScanResult{
		Nama:      member.NamaLengkap,
		NIM:       member.NIM,
		Divisi:    member.Divisi,
		Kegiatan:  kegiatan.Nama,
		Rangkaian: rangkaianJudul,
		Tanggal:   tanggal,
		Waktu:     utils.FormatWaktu(*row.CheckedInAt),
		Method:    row.Method,
	}, nil
}

func (s *Service) resolveMember(ctx context.Context, uniqueID string) (*models.Member, error) {
	if cached, ok := s.Members.Get(uniqueID); ok {
		return &cached, nil
	}

	member, err := s.DB.GetMemberByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, storageError("failed to look up member", err)
	}
	if member == nil || !member.Active {
		return nil, newError(KindMemberNotFound, "no active member matches the scanned id")
	}

	s.Members.Set(uniqueID, *member)
	return member, nil
}

func (s *Service) resolveKegiatan(ctx context.Context, kegiatanID int64) (*models.Kegiatan, error) {
	if cached, ok := s.Kegiatans.Get(kegiatanID); ok {
		return &cached, nil
	}

	kegiatan, err := s.DB.GetKegiatanByID(ctx, kegiatanID)
	if err != nil {
		return nil, storageError("failed to look up kegiatan", err)
	}
	if kegiatan == nil {
		return nil, newError(KindEventNotFound, "kegiatan not found")
	}
	if !kegiatan.Active {
		return nil, newError(KindEventInactive, "kegiatan is not active")
	}

	s.Kegiatans.Set(kegiatanID, *kegiatan)
	return kegiatan, nil
}

// resolveRangkaian picks the attendance date and, for multi-session events,
// enforces that the scan names exactly one session of this kegiatan.
func (s *Service) resolveRangkaian(ctx context.Context, kegiatan *models.Kegiatan, rangkaianID int64) (string, string, error) {
	if rangkaianID == models.NoRangkaian {
		if len(kegiatan.Rangkaian) > 0 {
			return "", "", newError(KindMalformedPayload, "this kegiatan has rangkaian; rangkaian_id is required")
		}
		return "", utils.FormatTanggal(time.Now()), nil
	}

	rangkaian, err := s.DB.GetRangkaianByID(ctx, rangkaianID)
	if err != nil {
		return "", "", storageError("failed to look up rangkaian", err)
	}
	if rangkaian == nil || rangkaian.KegiatanID != kegiatan.ID {
		return "", "", newError(KindEventNotFound, "rangkaian not found for this kegiatan")
	}

	return rangkaian.Judul, utils.FormatTanggal(rangkaian.Tanggal), nil
}

func (s *Service) logScan(outcome, memberRef, message string) {
	if s.Logger != nil {
		s.Logger.LogScan(outcome, memberRef, message)
	}
}
