package repository

import (
	"context"

	"attendance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns users ordered by last then first name.
	List(ctx context.Context, activeOnly bool) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	FindRoles(ctx context.Context, names []string) ([]model.Role, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return conn(ctx, r.db).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := conn(ctx, r.db).Preload("Roles").First(&u, "id = ?", id).Error
	return &u, err
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := conn(ctx, r.db).Preload("Roles").Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	return &u, err
}

func (r *userRepo) List(ctx context.Context, activeOnly bool) ([]model.User, error) {
	var users []model.User
	q := conn(ctx, r.db).Preload("Roles")
	if activeOnly {
		q = q.Where("is_active = true")
	}
	err := q.Order("last_name ASC, first_name ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(u).Error
}

func (r *userRepo) FindRoles(ctx context.Context, names []string) ([]model.Role, error) {
	var roles []model.Role
	err := conn(ctx, r.db).Where("name IN ?", names).Find(&roles).Error
	return roles, err
}
