package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/zenitmed/siteapi/internal/models"
)

// EmailConfig holds SMTP delivery settings. Host left empty disables the
// email channel.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Target receives admin notifications about new submissions.
	Target string
}

// EmailSender delivers submission notifications over SMTP.
type EmailSender struct {
	cfg EmailConfig
}

// NewEmailSender returns nil when no SMTP host is configured, which the
// Notifier treats as a disabled channel.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	if cfg.Host == "" {
		return nil
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Target == "" {
		cfg.Target = cfg.Username
	}
	return &EmailSender{cfg: cfg}
}

var formTypeLabels = map[string]string{
	models.FormTypeContact:      "Обращение с сайта",
	models.FormTypeProposal:     "Запрос КП",
	models.FormTypeTraining:     "Заявка на обучение",
	models.FormTypeRegistration: "Регистрация на конференцию",
}

// SendAdminNotification mails the submission details to the admin target.
func (s *EmailSender) SendAdminNotification(ctx context.Context, sub *models.Submission) error {
	label, ok := formTypeLabels[sub.FormType]
	if !ok {
		label = "Новая заявка"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%s\n\n", label)
	fmt.Fprintf(&body, "Имя: %s\n", sub.Name)
	if sub.Email != "" {
		fmt.Fprintf(&body, "Email: %s\n", sub.Email)
	}
	if sub.Phone != "" {
		fmt.Fprintf(&body, "Телефон: %s\n", sub.Phone)
	}
	if sub.City != "" {
		fmt.Fprintf(&body, "Город: %s\n", sub.City)
	}
	if sub.Institution != "" {
		fmt.Fprintf(&body, "Организация: %s\n", sub.Institution)
	}
	if sub.Message != "" {
		fmt.Fprintf(&body, "\nСообщение:\n%s\n", sub.Message)
	}
	if sub.PageURL != "" {
		fmt.Fprintf(&body, "\nСтраница: %s\n", sub.PageURL)
	}

	subject := fmt.Sprintf("%s: %s", label, sub.Name)

	return s.send(ctx, s.cfg.Target, subject, body.String())
}

// SendUserConfirmation mails the visitor that their request was received.
func (s *EmailSender) SendUserConfirmation(ctx context.Context, sub *models.Submission) error {
	var subject, body string
	switch sub.FormType {
	case models.FormTypeProposal:
		subject = "Ваш запрос коммерческого предложения получен"
		body = fmt.Sprintf("Здравствуйте, %s!\n\nМы получили ваш запрос коммерческого предложения и свяжемся с вами в ближайшее время.\n\nС уважением,\nкоманда ЗЕНИТ-МЕД", sub.Name)
	case models.FormTypeTraining:
		subject = "Ваша заявка на обучение получена"
		body = fmt.Sprintf("Здравствуйте, %s!\n\nМы получили вашу заявку на обучение и свяжемся с вами для согласования деталей.\n\nС уважением,\nкоманда ЗЕНИТ-МЕД", sub.Name)
	default:
		return nil
	}

	return s.send(ctx, sub.Email, subject, body)
}

func (s *EmailSender) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return nil
}
