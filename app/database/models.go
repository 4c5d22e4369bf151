package database

import (
	"time"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

const (
	RSVPConfirmed = "confirmed"
	RSVPDeclined  = "declined"
	RSVPMaybe     = "maybe"
)

// User represents an account in the CRM. The logins, rsvps and
// mentor_requests columns are denormalized engagement counters.
type User struct {
	ID             int        `json:"id" gorm:"primaryKey"`
	Email          string     `json:"email" gorm:"uniqueIndex"`
	Username       string     `json:"username" gorm:"uniqueIndex"`
	PasswordHash   string     `json:"-"`
	FullName       string     `json:"full_name"`
	Bio            *string    `json:"bio"`
	ProfileImage   *string    `json:"profile_image"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	Role           string     `json:"role" gorm:"default:'member'"`
	Interests      StringList `json:"interests" gorm:"type:text"`
	Logins         int        `json:"logins" gorm:"default:0"`
	RSVPs          int        `json:"rsvps" gorm:"column:rsvps;default:0"`
	MentorRequests int        `json:"mentor_requests" gorm:"default:0"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Contact is an external person record, optionally linked 1:1 to the
// user account provisioned for it.
type Contact struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	FullName  string    `json:"full_name" gorm:"not null"`
	UserID    *int      `json:"user_id" gorm:"uniqueIndex"`
	User      *User     `json:"user" gorm:"foreignKey:UserID"`
	Tags      []Tag     `json:"tags" gorm:"many2many:contact_tags"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Contact) TableName() string {
	return "contacts"
}

// Tag classifies contacts. Created lazily when first referenced. Distinct
// from the free-text tags column on Mentor, which has its own consumers.
type Tag struct {
	ID   int    `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

func (t *Tag) TableName() string {
	return "tags"
}

type Task struct {
	ID           int        `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title" gorm:"index;not null"`
	Description  *string    `json:"description"`
	DueDate      *time.Time `json:"due_date"`
	Status       string     `json:"status" gorm:"default:'pending';not null"`
	AssignedToID int        `json:"assigned_to_id" gorm:"not null"`
	AssignedTo   *User      `json:"assigned_to_user" gorm:"foreignKey:AssignedToID"`
	CreatedByID  int        `json:"created_by_id" gorm:"not null"`
	CreatedBy    *User      `json:"created_by_user" gorm:"foreignKey:CreatedByID"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (t *Task) TableName() string {
	return "tasks"
}

type Event struct {
	ID          int         `json:"id" gorm:"primaryKey"`
	Title       string      `json:"title" gorm:"uniqueIndex;not null"`
	Description *string     `json:"description"`
	StartDate   time.Time   `json:"start_date" gorm:"not null"`
	EndDate     *time.Time  `json:"end_date"`
	Location    *string     `json:"location"`
	RSVPs       []EventRSVP `json:"-" gorm:"foreignKey:EventID"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (e *Event) TableName() string {
	return "events"
}

// EventRSVP associates an event with either a registered user or an
// anonymous participant identified by email only. At most one row exists
// per (event, identity).
type EventRSVP struct {
	ID         int       `json:"id" gorm:"primaryKey"`
	EventID    int       `json:"event_id" gorm:"index;not null"`
	UserID     *int      `json:"user_id" gorm:"index"`
	User       *User     `json:"user" gorm:"foreignKey:UserID"`
	Email      string    `json:"email" gorm:"not null"`
	RSVPStatus string    `json:"rsvp_status" gorm:"column:rsvp_status;default:'confirmed'"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *EventRSVP) TableName() string {
	return "event_rsvps"
}

// Mentor is a directory entry, independent of User/Contact. The table
// name predates the mentor rename.
type Mentor struct {
	ID              int       `json:"id" gorm:"primaryKey"`
	FullName        string    `json:"full_name" gorm:"index;not null"`
	Email           string    `json:"email" gorm:"uniqueIndex;not null"`
	Organization    *string   `json:"organization" gorm:"index"`
	Bio             *string   `json:"bio"`
	Expertise       *string   `json:"expertise"`
	MentorType      *string   `json:"mentor_type"`
	Location        *string   `json:"location"`
	IsVirtual       bool      `json:"is_virtual" gorm:"default:false"`
	Tags            *string   `json:"tags"`
	ContactRequests int       `json:"contact_requests" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (m *Mentor) TableName() string {
	return "research_opportunities"
}

type MentorContactRequest struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	MentorID     int       `json:"mentor_id" gorm:"index;not null"`
	Mentor       *Mentor   `json:"-" gorm:"foreignKey:MentorID"`
	UserID       *int      `json:"user_id" gorm:"index"`
	User         *User     `json:"-" gorm:"foreignKey:UserID"`
	ContactName  string    `json:"contact_name" gorm:"not null"`
	ContactEmail string    `json:"contact_email" gorm:"not null"`
	ContactMajor *string   `json:"contact_major"`
	ContactYear  *string   `json:"contact_year"`
	Reason       string    `json:"reason" gorm:"not null"`
	Status       string    `json:"status" gorm:"default:'pending'"`
	CreatedAt    time.Time `json:"created_at"`
}

func (m *MentorContactRequest) TableName() string {
	return "mentor_contact_requests"
}

// LoginSession is an audit row recorded per successful authentication.
type LoginSession struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" gorm:"index;not null"`
	User      *User     `json:"user" gorm:"foreignKey:UserID"`
	LoginTime time.Time `json:"login_time" gorm:"autoCreateTime"`
	IPAddress *string   `json:"ip_address"`
	UserAgent *string   `json:"user_agent"`
}

func (s *LoginSession) TableName() string {
	return "login_sessions"
}

type Newsletter struct {
	ID          int        `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"index;not null"`
	Content     string     `json:"content" gorm:"not null"`
	Image       *string    `json:"image"`
	PublishDate *time.Time `json:"publish_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (n *Newsletter) TableName() string {
	return "newsletters"
}
