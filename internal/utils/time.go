package utils

import (
	"time"
)

// FormatTanggal renders a calendar date the way attendance rows store it.
func FormatTanggal(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatWaktu renders a time-of-day for scan responses.
func FormatWaktu(t time.Time) string {
	return t.Format("15:04:05")
}
