package scan_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-attendance/internal/admission"
	"ms-attendance/internal/auth"
	"ms-attendance/internal/logger"
	"ms-attendance/internal/models"
	"ms-attendance/internal/qr"
	"ms-attendance/internal/scan"
	"ms-attendance/internal/utils"
)

type MemberDBLayer interface {
	GetMemberByUniqueID(ctx context.Context, uniqueID string) (*models.Member, error)
}

type Handler struct {
	ScanService *scan.Service
	Admission   *admission.Checker
	MemberDB    MemberDBLayer
	QRGenerator *qr.Generator
	Logger      *logger.Logger
}

func NewHandler(service *scan.Service, checker *admission.Checker, memberDB MemberDBLayer, log *logger.Logger) *Handler {
	return &Handler{
		ScanService: service,
		Admission:   checker,
		MemberDB:    memberDB,
		QRGenerator: qr.NewGenerator(),
		Logger:      log,
	}
}

// Scan handles POST /scan: one QR payload in, one attendance transition out.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.Payload == "" || req.KegiatanID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("payload and kegiatan_id are required", ""))
		return
	}

	// Scanner identity is audit-only here; the OIDC middleware has already
	// verified the token on protected deployments.
	if token, err := auth.ExtractTokenFromRequest(r); err == nil {
		if scannerID, err := auth.ExtractScannerIDFromJWT(token); err == nil && h.Logger != nil {
			h.Logger.Debug("SCAN", fmt.Sprintf("scan submitted by operator %s", scannerID))
		}
	}

	result, err := h.ScanService.ProcessScan(r.Context(), req)
	if err != nil {
		h.writeScanError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Attendance recorded", result))
}

func (h *Handler) writeScanError(w http.ResponseWriter, err error) {
	var scanErr *scan.Error
	if !errors.As(err, &scanErr) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", err.Error()))
		return
	}

	if scanErr.Kind == scan.KindStorage && h.Logger != nil {
		h.Logger.Error("SCAN", scanErr.Error())
	}

	response := utils.ErrorResponse(scanErr.Message, string(scanErr.Kind))
	if scanErr.Kind == scan.KindDivisionNotAdmitted {
		response.Data = map[string]interface{}{
			"divisi":            scanErr.Divisi,
			"allowed_divisions": scanErr.AllowedDivisions,
		}
	}

	utils.WriteJSON(w, statusForKind(scanErr.Kind), response)
}

func statusForKind(kind scan.Kind) int {
	switch kind {
	case scan.KindMalformedPayload:
		return http.StatusBadRequest
	case scan.KindMemberNotFound, scan.KindEventNotFound:
		return http.StatusNotFound
	case scan.KindFieldMismatch, scan.KindEventInactive:
		return http.StatusUnprocessableEntity
	case scan.KindDivisionNotAdmitted:
		return http.StatusForbidden
	case scan.KindDuplicateAttendance:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ConfigureDivisions handles POST /kegiatan/{kegiatanID}/divisions. The
// "Semua Divisi" sentinel is expanded here, when the set is written.
func (h *Handler) ConfigureDivisions(w http.ResponseWriter, r *http.Request) {
	kegiatanID, err := strconv.ParseInt(chi.URLParam(r, "kegiatanID"), 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid kegiatan id", err.Error()))
		return
	}

	var body struct {
		Divisions []string `json:"divisions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	stored, err := h.Admission.Configure(r.Context(), kegiatanID, body.Divisions)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.ErrorResponse("Failed to configure admission set", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Admission set configured", map[string]interface{}{
		"kegiatan_id": kegiatanID,
		"divisions":   stored,
	}))
}

// MemberQR handles GET /members/{uniqueID}/qr and streams the identity QR as
// a PNG.
func (h *Handler) MemberQR(w http.ResponseWriter, r *http.Request) {
	uniqueID := chi.URLParam(r, "uniqueID")
	if uniqueID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("uniqueID is required", ""))
		return
	}

	member, err := h.MemberDB.GetMemberByUniqueID(r.Context(), uniqueID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to look up member", err.Error()))
		return
	}
	if member == nil || !member.Active {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Member not found", ""))
		return
	}

	png, err := h.QRGenerator.MemberPNG(*member)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to generate QR", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
}
