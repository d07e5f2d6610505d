package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/models"
)

// Notifier fans a new form submission out to the configured channels.
// Each channel is optional: an unconfigured channel is skipped, and a
// delivery failure on one channel never blocks the others. Submission
// handling must not fail because a notification could not be sent.
type Notifier struct {
	email    *EmailSender
	telegram *TelegramSender
}

func New(email *EmailSender, telegram *TelegramSender) *Notifier {
	return &Notifier{email: email, telegram: telegram}
}

// SubmissionReceived notifies administrators about a new submission and,
// for proposal and training requests, sends the visitor a confirmation.
func (n *Notifier) SubmissionReceived(ctx context.Context, sub *models.Submission) {
	if n.telegram != nil {
		if err := n.telegram.SendSubmission(ctx, sub); err != nil {
			log.Warn().Err(err).Str("form_type", sub.FormType).Msg("telegram notification failed")
		}
	}

	if n.email != nil {
		if err := n.email.SendAdminNotification(ctx, sub); err != nil {
			log.Warn().Err(err).Str("form_type", sub.FormType).Msg("admin email notification failed")
		}

		if sub.Email != "" && (sub.FormType == models.FormTypeProposal || sub.FormType == models.FormTypeTraining) {
			if err := n.email.SendUserConfirmation(ctx, sub); err != nil {
				log.Warn().Err(err).Str("email", sub.Email).Msg("confirmation email failed")
			}
		}
	}
}
