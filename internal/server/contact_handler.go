package server

import (
	"net/http"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/httpx"
	"github.com/zenitmed/siteapi/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type contactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	Institution string `json:"institution"`
	Message     string `json:"message"`
	Consent     bool   `json:"consent"`
	PageURL     string `json:"pageUrl"`
	FormType    string `json:"formType"`
}

func (req *contactRequest) validate() string {
	if req.Name == "" {
		return "Имя обязательно"
	}
	if req.Phone == "" && req.Email == "" {
		return "Укажите телефон или email"
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		return "Некорректный email"
	}
	if !req.Consent {
		return "Необходимо согласие на обработку персональных данных"
	}
	return ""
}

// handleContact accepts the public contact form.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	s.acceptSubmission(w, r, models.FormTypeContact)
}

// handleRequestProposal accepts commercial-proposal and training
// requests; the form distinguishes them via the formType field.
func (s *Server) handleRequestProposal(w http.ResponseWriter, r *http.Request) {
	s.acceptSubmission(w, r, models.FormTypeProposal)
}

func (s *Server) acceptSubmission(w http.ResponseWriter, r *http.Request, defaultType string) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	formType := defaultType
	if req.FormType == models.FormTypeTraining {
		formType = models.FormTypeTraining
	}

	sub := &models.Submission{
		FormType:    formType,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		City:        req.City,
		Institution: req.Institution,
		Message:     req.Message,
		Status:      models.SubmissionStatusNew,
		PageURL:     req.PageURL,
		Metadata: map[string]any{
			"ip":        httpx.ExtractClientIP(r),
			"userAgent": r.UserAgent(),
		},
	}

	if err := s.stores.Submissions.Create(r.Context(), sub); err != nil {
		log.Error().Err(err).Str("form_type", formType).Msg("failed to save submission")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	s.recorder.Info(r.Context(), "forms", "form submission received", map[string]any{
		"formType": formType,
		"id":       sub.ID.String(),
	})

	// Notification failures are logged inside the notifier and never
	// surface to the visitor.
	s.notifier.SubmissionReceived(r.Context(), sub)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
