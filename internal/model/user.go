package model

import (
	"time"

	"github.com/google/uuid"
)

// Role names carried in tokens and stored in the roles table.
const (
	RoleAdministrator = "Administrator"
	RoleManager       = "Manager"
	RoleCrewBoss      = "CrewBoss"
	RoleEmployee      = "Employee"
	RoleClient        = "Client"
)

// KnownRoles lists every role the API understands.
var KnownRoles = []string{RoleAdministrator, RoleManager, RoleCrewBoss, RoleEmployee, RoleClient}

type Role struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null"`
}

// User is an employee, manager or client. Credentials live with the identity provider.
// EmployeeNumber is the human readable identifier (EMP{YEAR}{NNNN}).
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeNumber string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	FirstName      string    `gorm:"type:varchar(100);not null"`
	LastName       string    `gorm:"type:varchar(100);not null"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone          *string   `gorm:"type:varchar(30)"`
	Department     *string   `gorm:"type:varchar(100)"`
	JobTitle       *string   `gorm:"type:varchar(100)"`
	HireDate       *time.Time
	IsActive       bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Roles []Role `gorm:"many2many:user_roles"`
}

func (u *User) FullName() string { return u.FirstName + " " + u.LastName }

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(names ...string) bool {
	for _, r := range u.Roles {
		for _, n := range names {
			if r.Name == n {
				return true
			}
		}
	}
	return false
}

func (u *User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}
