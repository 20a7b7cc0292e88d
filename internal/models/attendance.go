package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	StatusAbsent  = "Absent"
	StatusPresent = "Present"

	MethodQRCode = "QR Code"
	MethodManual = "Manual"

	// NoRangkaian is stored in rangkaian_id for single-session events so the
	// (member, kegiatan, rangkaian, tanggal) unique index covers them too.
	NoRangkaian int64 = 0
)

// Attendance is the persisted outcome of a check-in. At most one row exists
// per (member, kegiatan, rangkaian-or-none, tanggal) tuple; the database
// enforces that with a unique index.
type Attendance struct {
	bun.BaseModel `bun:"table:attendance"`

	ID          string     `bun:"id,pk" json:"id"`
	MemberID    int64      `bun:"member_id,notnull,unique:uq_attendance_tuple" json:"member_id"`
	KegiatanID  int64      `bun:"kegiatan_id,notnull,unique:uq_attendance_tuple" json:"kegiatan_id"`
	RangkaianID int64      `bun:"rangkaian_id,notnull,default:0,unique:uq_attendance_tuple" json:"rangkaian_id"`
	Tanggal     string     `bun:"tanggal,notnull,unique:uq_attendance_tuple" json:"tanggal"` // YYYY-MM-DD
	Status      string     `bun:"status,notnull" json:"status"`
	CheckedInAt *time.Time `bun:"checked_in_at,nullzero" json:"checked_in_at,omitempty"`
	Method      string     `bun:"method,nullzero" json:"method,omitempty"`
	Latitude    *float64   `bun:"latitude,nullzero" json:"latitude,omitempty"`
	Longitude   *float64   `bun:"longitude,nullzero" json:"longitude,omitempty"`
	RawPayload  string     `bun:"raw_payload,nullzero" json:"raw_payload,omitempty"`
}
