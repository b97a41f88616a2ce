package mailer

import (
	"fmt"

	"fanbase_backend/internal/config"
	"fanbase_backend/internal/logger"
	"fanbase_backend/internal/models"

	"gopkg.in/gomail.v2"
)

// Mailer отправляет транзакционные письма. Отправка best-effort:
// ошибка письма никогда не валит обработку платежа.
type Mailer struct {
	cfg *config.Config
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.Email.FromEmail)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(
		m.cfg.Email.SMTPHost,
		m.cfg.Email.SMTPPort,
		m.cfg.Email.SMTPUser,
		m.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(msg)
}

// SendPaymentReceipt шлет квитанцию после успешного провижининга подписки
func (m *Mailer) SendPaymentReceipt(user *models.User, sub *models.Subscription, orderID string) {
	if m.cfg.Email.SMTPHost == "" {
		return
	}

	body := fmt.Sprintf(
		"<p>Привет, %s!</p><p>Оплата по заказу <b>%s</b> получена, подписка активна до <b>%s</b>.</p>",
		user.Name, orderID, sub.EndDate.Format("02.01.2006"),
	)

	if err := m.Send(user.Email, "Оплата получена", body); err != nil {
		logger.Warn("failed to send payment receipt", "order_id", orderID, "error", err)
	}
}
