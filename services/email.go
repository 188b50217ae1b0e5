package services

import (
	"fmt"
	"net/smtp"
	"os"

	"integraportal/model"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

func LoadEmailConfig() (*EmailConfig, error) {
	config := &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
	if config.Host == "" || config.Port == "" || config.Username == "" || config.Password == "" {
		return nil, fmt.Errorf("incomplete SMTP configuration: host=%q, port=%q, username=%q",
			config.Host, config.Port, config.Username)
	}
	return config, nil
}

// SendCredentialsEmail mails the login credentials to one team member
// after the admin verifies the payment.
func SendCredentialsEmail(to string, team *model.Team, username, password string) error {
	subject := fmt.Sprintf("Integra 2026 Registration Verified - %s", team.RegID)
	body := credentialsEmailBody(team, username, password)
	return sendEmail(to, subject, body)
}

func credentialsEmailBody(team *model.Team, username, password string) string {
	return `
	<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
	  <h2 style="color:#2563eb;">Integra 2026 - Registration Verified</h2>
	  <p>Registration <strong>` + team.RegID + `</strong> for <strong>` + team.CollegeName + `</strong> has been verified.</p>
	  <div style="background:#eeeeee;padding:1rem;border-radius:0.5rem;">
	    <p><strong>Username:</strong> ` + username + `</p>
	    <p><strong>Password:</strong> ` + password + `</p>
	  </div>
	  <p>Use these credentials to log in to the participant dashboard for your food token QR code, lot numbers and event details.</p>
	  <p style="color:#6b7280;font-size:0.9rem;">Keep this mail safe; credentials are shared with every registered member of your team.</p>
	</div>
	`
}

func sendEmail(to, subject, body string) error {
	config, err := LoadEmailConfig()
	if err != nil {
		return fmt.Errorf("config loading error: %w", err)
	}

	addr := config.Host + ":" + config.Port
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	from := config.Username
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	message := "From: " + from + "\n" +
		"To: " + to + "\n" +
		"Subject: " + subject + "\n" +
		mime + "\n" +
		body

	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("SMTP send error: %w", err)
	}
	return nil
}
