// Package service contains background collaborators used by the handlers
package service

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// Mailer dispatches account mail. It's an interface so tests can swap
// the SMTP transport out
type Mailer interface {
	SendVerification(to, token string) error
}

type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

// SendVerification mails the single-use verification link for token to
// the given address
func (m *SMTPMailer) SendVerification(to, token string) error {
	from := viper.GetString("smtp.from")
	if to == "" || to == from {
		return errors.New("invalid recipient address")
	}

	var s string
	if viper.GetBool("host.ssl.enabled") {
		s = "s"
	}

	verifLink := fmt.Sprintf("http%v://%v/api/users/verify/%v",
		s, viper.GetString("host.domain"), token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Welcome %v to our community", to))
	msg.SetBody("text/html", fmt.Sprintf(
		"<strong>Please verify your address email first.</strong><br><p>Use this <a href='%v'>link</a> to verify your account</p>",
		verifLink))

	d := gomail.NewDialer(
		viper.GetString("smtp.host"),
		viper.GetInt("smtp.port"),
		viper.GetString("smtp.user"),
		viper.GetString("smtp.password"),
	)

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send verification mail, %w", err)
	}

	return nil
}
