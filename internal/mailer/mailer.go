// Package mailer delivers per-course instructor logs over SMTP.
package mailer

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/geosync-io/geosync/internal/config"
)

// Mailer sends one course log per message. With printOnly set, messages
// are logged instead of sent; useful for dry runs and local development.
type Mailer struct {
	dialer    *gomail.Dialer
	from      string
	domain    string
	subject   string
	printOnly bool
}

func New(cfg config.EmailConfig, printOnly bool) *Mailer {
	return &Mailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:      cfg.From,
		domain:    cfg.RecipientDomain,
		subject:   cfg.Subject,
		printOnly: printOnly,
	}
}

// SendCourseLog mails the log body to the instructors' addresses, formed
// by appending the recipient domain to each login id.
func (m *Mailer) SendCourseLog(courseID int, instructorLoginIDs []string, body string) error {
	if len(instructorLoginIDs) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	recipients := make([]string, 0, len(instructorLoginIDs))
	for _, loginID := range instructorLoginIDs {
		recipients = append(recipients, loginID+m.domain)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", fmt.Sprintf(m.subject, courseID))
	msg.SetBody("text/plain", body, gomail.SetPartEncoding(gomail.Unencoded))

	if m.printOnly {
		logrus.WithFields(logrus.Fields{
			"course_id":  courseID,
			"recipients": recipients,
		}).Infof("Email message:\n%s", body)
		return nil
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending course log for %d: %w", courseID, err)
	}

	logrus.WithFields(logrus.Fields{
		"course_id":  courseID,
		"recipients": recipients,
	}).Info("Emailed course log")

	return nil
}
