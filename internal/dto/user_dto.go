package dto

import (
	"time"

	"attendance/internal/model"
)

type CreateUserRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	// EmployeeNumber is generated (EMP{YEAR}{NNNN}) when empty.
	EmployeeNumber string     `json:"employee_number" validate:"omitempty,max=20"`
	Department     *string    `json:"department" validate:"omitempty,max=100"`
	JobTitle       *string    `json:"job_title" validate:"omitempty,max=100"`
	HireDate       *time.Time `json:"hire_date"`
	Roles          []string   `json:"roles" validate:"required,min=1,dive,oneof=Administrator Manager CrewBoss Employee Client"`
}

type UserResponse struct {
	ID             string     `json:"id"`
	EmployeeNumber string     `json:"employee_number"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone,omitempty"`
	Department     *string    `json:"department,omitempty"`
	JobTitle       *string    `json:"job_title,omitempty"`
	HireDate       *time.Time `json:"hire_date,omitempty"`
	IsActive       bool       `json:"is_active"`
	Roles          []string   `json:"roles"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:             u.ID.String(),
		EmployeeNumber: u.EmployeeNumber,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Phone:          u.Phone,
		Department:     u.Department,
		JobTitle:       u.JobTitle,
		HireDate:       u.HireDate,
		IsActive:       u.IsActive,
		Roles:          u.RoleNames(),
	}
}
