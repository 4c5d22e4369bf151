package mentor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"ecocrm/app/config"
	"ecocrm/app/database"
	"ecocrm/app/mail"
)

var ErrMentorNotFound = errors.New("mentor not found")

// Service handles mentor contact requests: the persistent record, the
// engagement counters and the best-effort notification email.
type Service struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer mail.Mailer
}

func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		cfg:    cfg,
		mailer: mail.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase),
	}
}

type ContactRequestInput struct {
	MentorID     int
	ContactName  string
	ContactEmail string
	ContactMajor *string
	ContactYear  *string
	Reason       string
}

// CreateContactRequest persists the inquiry and bumps the mentor's
// request counter. When the contact email belongs to a registered user
// the request is linked to that account and the user's counter is
// bumped as well. Returns whether the notification email was delivered;
// a mail failure never rolls back the record.
func (s *Service) CreateContactRequest(input ContactRequestInput) (*database.MentorContactRequest, bool, error) {
	var mentor database.Mentor
	result := s.db.First(&mentor, "id = ?", input.MentorID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, false, ErrMentorNotFound
		}
		return nil, false, result.Error
	}

	request := database.MentorContactRequest{
		MentorID:     mentor.ID,
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
		ContactMajor: input.ContactMajor,
		ContactYear:  input.ContactYear,
		Reason:       input.Reason,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&mentor).Update("contact_requests", gorm.Expr("contact_requests + ?", 1)).Error; err != nil {
			return err
		}

		var user database.User
		result := tx.First(&user, "email = ?", strings.ToLower(input.ContactEmail))
		if result.Error == nil {
			request.UserID = &user.ID
			if err := tx.Model(&user).Update("mentor_requests", gorm.Expr("mentor_requests + ?", 1)).Error; err != nil {
				return err
			}
		} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, false, err
	}

	emailSent := true
	if err := s.sendNotification(&mentor, &request); err != nil {
		log.Errorf("Failed to send mentor contact email: %v", err)
		emailSent = false
	}

	return &request, emailSent, nil
}

func (s *Service) sendNotification(mentor *database.Mentor, request *database.MentorContactRequest) error {
	orDefault := func(value *string) string {
		if value == nil || *value == "" {
			return "Not provided"
		}
		return *value
	}

	virtual := "No"
	if mentor.IsVirtual {
		virtual = "Yes"
	}

	body := fmt.Sprintf(`A student has requested to connect with a mentor through the EcoSystem CRM platform.

Student Information:
- Name: %s
- Email: %s
- Major/Field: %s
- Academic Year: %s

Mentor Information:
- Name: %s
- Organization: %s
- Expertise: %s
- Location: %s
- Virtual Available: %s

Student's Reason for Contact:
%s

Please review this request and coordinate the connection between the student and mentor.
`,
		request.ContactName,
		request.ContactEmail,
		orDefault(request.ContactMajor),
		orDefault(request.ContactYear),
		mentor.FullName,
		orDefault(mentor.Organization),
		orDefault(mentor.Expertise),
		orDefault(mentor.Location),
		virtual,
		request.Reason,
	)

	message := mail.Email{
		Subject: fmt.Sprintf("Mentor Contact Request: %s wants to connect with %s", request.ContactName, mentor.FullName),
		Body:    body,
		From:    s.cfg.MailFrom,
		To:      []string{s.cfg.MentorContactEmail},
	}

	return s.mailer.SendMail(&message)
}
