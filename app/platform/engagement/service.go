package engagement

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"ecocrm/app/database"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type MentorRequests struct {
	Name     string `json:"name"`
	Requests int    `json:"requests"`
}

type Activity struct {
	Type    string    `json:"type"`
	User    string    `json:"user"`
	Time    time.Time `json:"time"`
	Details string    `json:"details"`
}

type Stats struct {
	TotalUsers           int64            `json:"total_users"`
	ActiveUsersThisMonth int64            `json:"active_users_this_month"`
	TotalLogins          int64            `json:"total_logins"`
	TotalRSVPs           int64            `json:"total_rsvps"`
	TotalMentorRequests  int64            `json:"total_mentor_requests"`
	TopMentorsByRequests []MentorRequests `json:"top_mentors_by_requests"`
	RecentActivity       []Activity       `json:"recent_activity"`
}

type UserEngagement struct {
	UserID         int        `json:"user_id"`
	Username       string     `json:"username"`
	FullName       string     `json:"full_name"`
	Role           string     `json:"role"`
	Logins         int        `json:"logins"`
	RSVPs          int        `json:"rsvps"`
	MentorRequests int        `json:"mentor_requests"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Stats computes the dashboard aggregates fresh on every call. A failing
// sub-aggregate is logged and degrades to zero or empty instead of
// failing the whole response.
func (s *Service) Stats() Stats {
	stats := Stats{
		TopMentorsByRequests: []MentorRequests{},
		RecentActivity:       []Activity{},
	}

	if err := s.db.Model(&database.User{}).Count(&stats.TotalUsers).Error; err != nil {
		log.Errorf("Failed to count users: %v", err)
	}

	monthAgo := time.Now().UTC().AddDate(0, 0, -30)
	if err := s.db.Model(&database.User{}).Where("last_login >= ?", monthAgo).Count(&stats.ActiveUsersThisMonth).Error; err != nil {
		log.Errorf("Failed to count active users: %v", err)
	}

	stats.TotalLogins = s.sumColumn("logins")
	stats.TotalRSVPs = s.sumColumn("rsvps")
	stats.TotalMentorRequests = s.sumColumn("mentor_requests")

	var topMentors []database.Mentor
	result := s.db.Where("contact_requests > 0").Order("contact_requests DESC").Limit(5).Find(&topMentors)
	if result.Error != nil {
		log.Errorf("Failed to rank mentors: %v", result.Error)
	} else {
		for _, mentor := range topMentors {
			stats.TopMentorsByRequests = append(stats.TopMentorsByRequests, MentorRequests{
				Name:     mentor.FullName,
				Requests: mentor.ContactRequests,
			})
		}
	}

	var sessions []database.LoginSession
	result = s.db.Preload("User").Order("login_time DESC").Limit(10).Find(&sessions)
	if result.Error != nil {
		log.Errorf("Failed to load recent sessions: %v", result.Error)
	} else {
		for _, session := range sessions {
			activity := Activity{
				Type: "login",
				Time: session.LoginTime,
			}
			if session.User != nil {
				activity.User = fmt.Sprintf("%s (%s)", session.User.FullName, session.User.Username)
			}
			if session.IPAddress != nil {
				activity.Details = fmt.Sprintf("Logged in from %s", *session.IPAddress)
			}
			stats.RecentActivity = append(stats.RecentActivity, activity)
		}
	}

	return stats
}

func (s *Service) sumColumn(column string) int64 {
	var total *int64
	if err := s.db.Model(&database.User{}).Select("SUM(" + column + ")").Scan(&total).Error; err != nil {
		log.Errorf("Failed to sum %s: %v", column, err)
		return 0
	}
	if total == nil {
		return 0
	}
	return *total
}

// Users lists per-user engagement rows, most active first.
func (s *Service) Users() ([]UserEngagement, error) {
	var users []database.User
	result := s.db.Order("logins DESC").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	rows := make([]UserEngagement, 0, len(users))
	for _, user := range users {
		rows = append(rows, UserEngagement{
			UserID:         user.ID,
			Username:       user.Username,
			FullName:       user.FullName,
			Role:           user.Role,
			Logins:         user.Logins,
			RSVPs:          user.RSVPs,
			MentorRequests: user.MentorRequests,
			LastLogin:      user.LastLogin,
			CreatedAt:      user.CreatedAt,
		})
	}
	return rows, nil
}
