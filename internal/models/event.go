package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Kegiatan is a schedulable activity attendance is recorded against.
type Kegiatan struct {
	bun.BaseModel `bun:"table:kegiatan"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id"`
	Nama   string `bun:"nama,notnull" json:"nama"`
	Active bool   `bun:"active,notnull" json:"active"`

	Rangkaian []Rangkaian `bun:"rel:has-many,join:id=kegiatan_id" json:"rangkaian,omitempty"`
}

// Rangkaian is one dated session inside a multi-day kegiatan.
type Rangkaian struct {
	bun.BaseModel `bun:"table:rangkaian"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	KegiatanID int64     `bun:"kegiatan_id,notnull" json:"kegiatan_id"`
	Judul      string    `bun:"judul,notnull" json:"judul"`
	Tanggal    time.Time `bun:"tanggal,notnull" json:"tanggal"`
	Urutan     int       `bun:"urutan" json:"urutan"`
}
