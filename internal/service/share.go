package service

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/mwozniak/mealvault/internal/model"
)

// ShareService hands a meal's ingredient list off to an external address.
// The handoff is fire-and-forget: the caller learns whether it was
// attempted, nothing more.
type ShareService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
}

func NewShareService(host, port, username, password, fromEmail, fromName string) *ShareService {
	return &ShareService{
		smtpHost:     host,
		smtpPort:     port,
		smtpUsername: username,
		smtpPassword: password,
		fromEmail:    fromEmail,
		fromName:     fromName,
	}
}

// ShareIngredients composes the pre-filled shopping list message for the
// meal and sends it to the destination address.
func (s *ShareService) ShareIngredients(to string, meal model.Meal) error {
	subject := fmt.Sprintf("Shopping list: %s", meal.Name)
	body := BuildIngredientMessage(meal)
	return s.send(to, subject, body)
}

// BuildIngredientMessage renders the ingredient list as a plain-text
// message, one "name (measure)" line per ingredient.
func BuildIngredientMessage(meal model.Meal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ingredients for %s:\n", meal.Name)
	for _, ing := range meal.Ingredients {
		if ing.Measure != "" {
			fmt.Fprintf(&b, "- %s (%s)\n", ing.Name, ing.Measure)
		} else {
			fmt.Fprintf(&b, "- %s\n", ing.Name)
		}
	}
	return b.String()
}

func (s *ShareService) send(to, subject, body string) error {
	// If SMTP is not configured, log the message instead.
	if s.smtpHost == "" || s.smtpPort == "" {
		log.Printf("SMTP not configured, logging share message:")
		log.Printf("To: %s", to)
		log.Printf("Subject: %s", subject)
		log.Printf("Body: %s", body)
		return nil
	}

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	addr := s.smtpHost + ":" + s.smtpPort
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send share message: %w", err)
	}
	return nil
}
