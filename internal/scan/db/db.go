package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"ms-attendance/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetMemberByUniqueID looks a member up by the opaque token embedded in QR
// payloads. Returns (nil, nil) when no such member exists.
func (d *DB) GetMemberByUniqueID(ctx context.Context, uniqueID string) (*models.Member, error) {
	var member models.Member
	err := d.Bun.NewSelect().
		Model(&member).
		Where("unique_id = ?", uniqueID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetKegiatanByID returns the event with its rangkaian list, or (nil, nil)
// when it does not exist.
func (d *DB) GetKegiatanByID(ctx context.Context, id int64) (*models.Kegiatan, error) {
	var kegiatan models.Kegiatan
	err := d.Bun.NewSelect().
		Model(&kegiatan).
		Relation("Rangkaian").
		Where("kegiatan.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &kegiatan, nil
}

func (d *DB) GetRangkaianByID(ctx context.Context, id int64) (*models.Rangkaian, error) {
	var rangkaian models.Rangkaian
	err := d.Bun.NewSelect().
		Model(&rangkaian).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rangkaian, nil
}

// GetAllowedDivisions returns the admission set configured for a kegiatan.
func (d *DB) GetAllowedDivisions(ctx context.Context, kegiatanID int64) ([]string, error) {
	var divisions []string
	err := d.Bun.NewSelect().
		Model((*models.KegiatanDivision)(nil)).
		Column("divisi").
		Where("kegiatan_id = ?", kegiatanID).
		Order("divisi ASC").
		Scan(ctx, &divisions)
	if err != nil {
		return nil, err
	}
	return divisions, nil
}

// ReplaceAllowedDivisions swaps the admission set of a kegiatan for a new one.
func (d *DB) ReplaceAllowedDivisions(ctx context.Context, kegiatanID int64, divisions []string) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.KegiatanDivision)(nil)).
			Where("kegiatan_id = ?", kegiatanID).
			Exec(ctx)
		if err != nil {
			return err
		}
		for _, divisi := range divisions {
			row := models.KegiatanDivision{KegiatanID: kegiatanID, Divisi: divisi}
			if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetDistinctActiveDivisions lists the divisions of currently active members.
// Used to expand the "all divisions" sentinel when an admission set is
// configured.
func (d *DB) GetDistinctActiveDivisions(ctx context.Context) ([]string, error) {
	var divisions []string
	err := d.Bun.NewSelect().
		Model((*models.Member)(nil)).
		ColumnExpr("DISTINCT divisi").
		Where("active = ?", true).
		Order("divisi ASC").
		Scan(ctx, &divisions)
	if err != nil {
		return nil, err
	}
	return divisions, nil
}

// GetAttendance fetches the row for one attendance tuple, or (nil, nil) when
// none exists yet.
func (d *DB) GetAttendance(ctx context.Context, memberID, kegiatanID, rangkaianID int64, tanggal string) (*models.Attendance, error) {
	var attendance models.Attendance
	err := d.Bun.NewSelect().
		Model(&attendance).
		Where("member_id = ?", memberID).
		Where("kegiatan_id = ?", kegiatanID).
		Where("rangkaian_id = ?", rangkaianID).
		Where("tanggal = ?", tanggal).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (d *DB) InsertAttendance(ctx context.Context, attendance *models.Attendance) error {
	_, err := d.Bun.NewInsert().Model(attendance).Exec(ctx)
	return err
}

// UpdateAttendanceStatus stamps an existing row with the outcome of a scan.
func (d *DB) UpdateAttendanceStatus(ctx context.Context, attendance *models.Attendance) error {
	_, err := d.Bun.NewUpdate().
		Model(attendance).
		Column("status", "checked_in_at", "method", "latitude", "longitude", "raw_payload").
		Where("id = ?", attendance.ID).
		Exec(ctx)
	return err
}

// IsUniqueViolation reports whether err is the storage engine rejecting a
// duplicate attendance tuple. Postgres signals 23505; the sqlite shim used in
// tests only gives us the message text.
func (d *DB) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}
