package qr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-attendance/internal/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestMemberPNG(t *testing.T) {
	g := NewGenerator()

	png, err := g.MemberPNG(models.Member{
		UniqueID:    "ABC123",
		NamaLengkap: "Budi Santoso",
		NIM:         "12345678",
		Divisi:      "KESTARI",
		Active:      true,
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "output must be a PNG image")
}

func TestPayloadPNG(t *testing.T) {
	g := NewGenerator()

	png, err := g.PayloadPNG(`{"id":"ABC123","nama":"Budi Santoso","nim":"12345678","divisi":"KESTARI"}`)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}
