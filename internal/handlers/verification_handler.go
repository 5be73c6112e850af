package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"

	"vgate-backend/internal/models"
	"vgate-backend/internal/services"
	"vgate-backend/templates"
)

// VerificationHandler serves the printable side of a pass: a QR code on the
// student's pass screen, and the roster page the QR resolves to at the gate.
type VerificationHandler struct {
	Service *services.GatePassService
	tmpl    *template.Template
}

func NewVerificationHandler(service *services.GatePassService) *VerificationHandler {
	return &VerificationHandler{
		Service: service,
		tmpl:    template.Must(template.ParseFS(templates.FS, "verification.html")),
	}
}

// QRCode renders a PNG QR pointing at the pass's verification page. Only
// approved passes get a code.
func (h *VerificationHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gate pass ID", http.StatusBadRequest)
		return
	}

	pass, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if pass.Status != models.PassStatusApproved {
		http.Error(w, "Gate pass is not approved", http.StatusBadRequest)
		return
	}

	png, err := qrcode.Encode(h.verifyURL(r, id), qrcode.Medium, 256)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(png)
}

// VerifyJSON returns the machine-readable verification summary.
func (h *VerificationHandler) VerifyJSON(w http.ResponseWriter, r *http.Request) {
	pass, err := h.passFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":         pass.Status == models.PassStatusApproved,
		"status":        pass.Status,
		"gate_pass":     pass,
		"total_members": pass.TotalMembers(),
		"returned":      len(pass.Returns),
	})
}

// VerifyPage renders the human-readable roster page the gate staff sees
// after scanning a QR.
func (h *VerificationHandler) VerifyPage(w http.ResponseWriter, r *http.Request) {
	pass, err := h.passFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, map[string]any{
		"Pass":    pass,
		"Valid":   pass.Status == models.PassStatusApproved,
		"Members": pass.Members,
	}); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func (h *VerificationHandler) passFromRequest(r *http.Request) (*models.GatePass, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return nil, fmt.Errorf("invalid gate pass id: %w", err)
	}
	return h.Service.Get(r.Context(), id)
}

func (h *VerificationHandler) verifyURL(r *http.Request, passID int) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/verify/%d", scheme, r.Host, passID)
}
