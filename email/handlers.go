// Package email, as part of the outbound-mail module.
// Controller layer for the email endpoints.
package email

import (
	"encoding/json"
	"net/http"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/auth"
	"github.com/user/bazaar-go/validate"
)

// Recipients accepts either a single address or a list of addresses in JSON.
type Recipients []string

// UnmarshalJSON implements the string-or-array contract for the "to" field.
func (rs *Recipients) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*rs = Recipients{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*rs = Recipients(many)
	return nil
}

// SendRequest is the body for POST /email/send.
type SendRequest struct {
	To       Recipients `json:"to" validate:"required,min=1,dive,email"`
	From     string     `json:"from" validate:"omitempty,email"`
	Subject  string     `json:"subject" validate:"required"`
	Body     string     `json:"body"`
	HTMLBody string     `json:"htmlBody"`
}

// SendTemplatedRequest is the body for POST /email/send-templated.
type SendTemplatedRequest struct {
	To           Recipients             `json:"to" validate:"required,min=1,dive,email"`
	From         string                 `json:"from" validate:"omitempty,email"`
	TemplateName string                 `json:"templateName" validate:"required"`
	TemplateData map[string]interface{} `json:"templateData"`
}

// SendResponse reports the SES message id of a delivered message.
type SendResponse struct {
	MessageID string `json:"messageId"`
}

// Handlers wraps the EmailService to provide HTTP handlers.
type Handlers struct {
	service *EmailService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *EmailService) *Handlers {
	return &Handlers{service: service}
}

// HandleSend godoc
// @Summary Send an email
// @Description Sends an ad-hoc message with text and/or HTML bodies through SES.
// @Tags Email
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param emailBody body email.SendRequest true "Message to send"
// @Success 200 {object} email.SendResponse "Message accepted"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 502 {object} apperror.ErrorResponse "Mail service unavailable"
// @Router /email/send [post]
func (h *Handlers) HandleSend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if req.Body == "" && req.HTMLBody == "" {
			auth.WriteError(w, r, apperror.NewValidationError("message body is required", nil))
			return
		}

		id, err := h.service.Send(r.Context(), SendInput{
			To:       []string(req.To),
			From:     req.From,
			Subject:  req.Subject,
			TextBody: req.Body,
			HTMLBody: req.HTMLBody,
		})
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, SendResponse{MessageID: id})
	}
}

// HandleSendTemplated godoc
// @Summary Send a templated email
// @Description Sends a message rendered by SES from a stored template.
// @Tags Email
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param emailBody body email.SendTemplatedRequest true "Template name, data and recipients"
// @Success 200 {object} email.SendResponse "Message accepted"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 502 {object} apperror.ErrorResponse "Mail service unavailable"
// @Router /email/send-templated [post]
func (h *Handlers) HandleSendTemplated() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendTemplatedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		id, err := h.service.SendTemplated(r.Context(), SendTemplatedInput{
			To:           []string(req.To),
			From:         req.From,
			TemplateName: req.TemplateName,
			TemplateData: req.TemplateData,
		})
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, SendResponse{MessageID: id})
	}
}
