package models

import (
	"github.com/uptrace/bun"
)

// AllDivisionsSentinel marks an admission set that should admit every
// division. It is expanded into the concrete division list when the set is
// configured, never stored as-is.
const AllDivisionsSentinel = "Semua Divisi"

// KegiatanDivision is one row of an event's admission set: a division allowed
// to check into the kegiatan.
type KegiatanDivision struct {
	bun.BaseModel `bun:"table:kegiatan_divisions"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	KegiatanID int64  `bun:"kegiatan_id,notnull" json:"kegiatan_id"`
	Divisi     string `bun:"divisi,notnull" json:"divisi"`
}
