package models

import (
	"github.com/uptrace/bun"
)

// Member is a committee participant. The core only ever reads these rows;
// creation and edits belong to the admin panel.
type Member struct {
	bun.BaseModel `bun:"table:members"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	UniqueID    string `bun:"unique_id,unique,notnull" json:"unique_id"`
	NamaLengkap string `bun:"nama_lengkap,notnull" json:"nama_lengkap"`
	NIM         string `bun:"nim,unique,notnull" json:"nim"`
	Divisi      string `bun:"divisi,notnull" json:"divisi"`
	Active      bool   `bun:"active,notnull" json:"active"`
}
