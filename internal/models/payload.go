package models

// ScanPayload is the decoded content of a scanned QR code. It lives only for
// the duration of one scan; the raw string may be kept on the attendance row
// as an audit copy.
type ScanPayload struct {
	ID        string `json:"id"`
	Nama      string `json:"nama"`
	NIM       string `json:"nim"`
	Divisi    string `json:"divisi"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// ScanRequest is the body of POST /scan.
type ScanRequest struct {
	Payload     string   `json:"payload"`
	KegiatanID  int64    `json:"kegiatan_id"`
	RangkaianID int64    `json:"rangkaian_id,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// ScanResult is the success payload returned to the scanning device.
type ScanResult struct {
	Nama      string `json:"nama"`
	NIM       string `json:"nim"`
	Divisi    string `json:"divisi"`
	Kegiatan  string `json:"kegiatan"`
	Rangkaian string `json:"rangkaian,omitempty"`
	Tanggal   string `json:"tanggal"`
	Waktu     string `json:"waktu"`
	Method    string `json:"method"`
}

// AttendanceUpdate is the live notification emitted after a successful
// transition, both over SSE and to Kafka.
type AttendanceUpdate struct {
	KegiatanID int64  `json:"kegiatan_id"`
	Tanggal    string `json:"tanggal"`
	Kind       string `json:"kind"`
	MemberID   int64  `json:"member_id"`
	Nama       string `json:"nama"`
	Status     string `json:"status"`
}
