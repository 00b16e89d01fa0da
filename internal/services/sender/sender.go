// Package services содержит рассылку писем из очередей уведомлений.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/smtp"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// SenderService превращает сообщения очередей в письма.
type SenderService struct {
	dialer smtp.Dialer
	from   string
	log    *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, dialer smtp.Dialer, from string) *SenderService {
	return &SenderService{
		dialer: dialer,
		from:   from,
		log:    log,
	}
}

// SendVerification отправляет ссылку подтверждения почты.
// Нечитаемое сообщение отбрасывается, ошибка SMTP возвращает его в очередь.
func (s *SenderService) SendVerification(body []byte) error {
	var message models.VerificationMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("dropping malformed verification message", sl.Err(err))
		return nil
	}

	text := fmt.Sprintf("Hello!\n\nPlease confirm your email address by opening the link below:\n\n%s\n\n"+
		"The link expires in 24 hours. If you did not sign up, ignore this email.\n", message.Link)

	return s.send(message.Email, "Confirm your email", text)
}

// SendReceipt отправляет чек об оплате.
func (s *SenderService) SendReceipt(body []byte) error {
	var message models.ReceiptMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("dropping malformed receipt message", sl.Err(err))
		return nil
	}

	var subject, what string
	switch message.Purpose {
	case models.PurposePostingFee:
		subject = "Payment received: post publication"
		what = "You can now publish your profile."
	case models.PurposeContactReveal:
		subject = "Payment received: contact reveal"
		what = fmt.Sprintf("The contact for post #%d is now visible to you.", message.TargetPostID)
	default:
		s.log.Error("dropping receipt with unknown payment type", slog.String("payment_type", string(message.Purpose)))
		return nil
	}

	text := fmt.Sprintf("Thank you for your payment of %s.\n\n%s\n", formatAmount(message.Amount, message.Currency), what)
	return s.send(message.Email, subject, text)
}

func (s *SenderService) send(to, subject, text string) error {
	if to == "" {
		s.log.Error("dropping message without recipient", slog.String("subject", subject))
		return nil
	}
	err := smtp.Send(s.dialer, smtp.Message{
		From:    s.from,
		To:      to,
		Subject: subject,
		Body:    text,
	})
	if err != nil {
		s.log.Error("failed to send email", slog.String("to", to), sl.Err(err))
		return err
	}
	s.log.Info("email sent successfully", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// formatAmount печатает сумму в минимальных единицах как 5.00 USD.
func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, strings.ToUpper(currency))
}
