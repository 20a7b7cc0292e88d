package qr

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"

	"ms-attendance/internal/models"
)

// Generator renders member identity payloads as scannable QR PNGs. The scan
// pipeline never touches pixels; this is the display-side collaborator that
// produces what the pipeline later reads back as text.
type Generator struct {
	size int
}

func NewGenerator() *Generator {
	return &Generator{size: 256}
}

// MemberPNG encodes a member's identity payload.
func (g *Generator) MemberPNG(member models.Member) ([]byte, error) {
	payload := models.ScanPayload{
		ID:        member.UniqueID,
		Nama:      member.NamaLengkap,
		NIM:       member.NIM,
		Divisi:    member.Divisi,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal member payload: %w", err)
	}

	return qrcode.Encode(string(data), qrcode.Medium, g.size)
}

// PayloadPNG encodes an arbitrary payload string, e.g. for reprints.
func (g *Generator) PayloadPNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, g.size)
}
