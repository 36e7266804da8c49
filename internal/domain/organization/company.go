package organization

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRole string

const (
	MemberEmployee MemberRole = "EMPLOYEE"
	MemberAdmin    MemberRole = "ADMIN"
)

type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Email     string    `gorm:"column:email" json:"email,omitempty"`
	Phone     string    `gorm:"column:phone" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Company) TableName() string { return "company" }

func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CompanyMember struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID  `gorm:"type:uuid;column:company_id;not null;uniqueIndex:idx_company_member,priority:1" json:"company_id"`
	UserID    uuid.UUID  `gorm:"type:uuid;column:user_id;not null;uniqueIndex:idx_company_member,priority:2;index" json:"user_id"`
	Role      MemberRole `gorm:"column:role;not null;default:'EMPLOYEE'" json:"role"`
	JoinedAt  time.Time  `gorm:"column:joined_at;not null;autoCreateTime" json:"joined_at"`
}

func (CompanyMember) TableName() string { return "company_member" }

func (m *CompanyMember) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Role == "" {
		m.Role = MemberEmployee
	}
	return nil
}

// CompanyLicense holds purchased seats. OrderItemID is unique so a paid seat
// line yields exactly one license.
type CompanyLicense struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID  `gorm:"type:uuid;column:company_id;not null;index" json:"company_id"`
	OrderItemID *uuid.UUID `gorm:"type:uuid;column:order_item_id;uniqueIndex" json:"order_item_id,omitempty"`
	SeatsTotal  int        `gorm:"column:seats_total;not null;default:0" json:"seats_total"`
	SeatsUsed   int        `gorm:"column:seats_used;not null;default:0" json:"seats_used"`
	ValidUntil  *time.Time `gorm:"column:valid_until" json:"valid_until,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (CompanyLicense) TableName() string { return "company_license" }

func (l *CompanyLicense) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l *CompanyLicense) SeatsLeft() int {
	if l == nil || l.SeatsUsed >= l.SeatsTotal {
		return 0
	}
	return l.SeatsTotal - l.SeatsUsed
}

// Usable reports whether the license has seats left and has not expired at now.
func (l *CompanyLicense) Usable(now time.Time) bool {
	if l.SeatsLeft() == 0 {
		return false
	}
	return l.ValidUntil == nil || l.ValidUntil.After(now)
}

type CompanyAssignment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;column:company_id;not null;index" json:"company_id"`
	CourseID     uuid.UUID  `gorm:"type:uuid;column:course_id;not null;index" json:"course_id"`
	AssignedByID *uuid.UUID `gorm:"type:uuid;column:assigned_by_id" json:"assigned_by_id,omitempty"`
	DueDate      *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (CompanyAssignment) TableName() string { return "company_assignment" }

func (a *CompanyAssignment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type CompanyAssignmentTarget struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;column:assignment_id;not null;uniqueIndex:idx_company_assignment_target,priority:1" json:"assignment_id"`
	UserID       uuid.UUID `gorm:"type:uuid;column:user_id;not null;uniqueIndex:idx_company_assignment_target,priority:2" json:"user_id"`
}

func (CompanyAssignmentTarget) TableName() string { return "company_assignment_target" }

func (t *CompanyAssignmentTarget) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
