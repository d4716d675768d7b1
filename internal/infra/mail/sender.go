package mail

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("Jan 2, 2006") },
}).ParseFS(templateFS, "templates/*.html"))

var ErrNotConfigured = errors.New("mail host is not configured")

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func (s *EmailSender) SendTaskAssigned(to, name, title string, due time.Time) error {
	return s.send(to, fmt.Sprintf("New task assigned: %s", title), "task_assigned.html", TaskEmailData{
		Name:    name,
		Title:   title,
		DueDate: due,
	})
}

func (s *EmailSender) SendTaskReminder(to, name, title string, due time.Time) error {
	return s.send(to, fmt.Sprintf("Reminder: %s is due today", title), "task_reminder.html", TaskEmailData{
		Name:    name,
		Title:   title,
		DueDate: due,
	})
}

func (s *EmailSender) send(to, subject, tmpl string, data TaskEmailData) error {
	if s.Host == "" {
		return ErrNotConfigured
	}

	html, err := render(tmpl, data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email over SMTP: %w", err)
	}

	return nil
}

func render(name string, data TaskEmailData) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return body.String(), nil
}
