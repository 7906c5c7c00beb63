package repository

import (
	"context"

	"hrdesk/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRoleRepository reads the role table maintained by the role-management screens.
type UserRoleRepository struct {
	db *gorm.DB
}

func NewUserRoleRepository(db *gorm.DB) *UserRoleRepository {
	return &UserRoleRepository{db: db}
}

type userRoleModel struct {
	ID     string `gorm:"column:id;primaryKey;type:varchar(36)"`
	UserID string `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_user_roles_user_role,priority:1"`
	Role   string `gorm:"column:role;type:varchar(32);not null;uniqueIndex:idx_user_roles_user_role,priority:2;index"`
}

func (userRoleModel) TableName() string { return "user_roles" }

// Assign grants role to userID; granting an existing role is a no-op.
func (r *UserRoleRepository) Assign(ctx context.Context, userID string, role domain.Role) error {
	m := userRoleModel{ID: uuid.NewString(), UserID: userID, Role: string(role)}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m).Error
	return translateError(err)
}

// ListReviewers returns the ids of every user holding a reviewer role, except excluding.
func (r *UserRoleRepository) ListReviewers(ctx context.Context, excluding string) ([]string, error) {
	roles := make([]string, 0, len(domain.ReviewerRoles))
	for _, role := range domain.ReviewerRoles {
		roles = append(roles, string(role))
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&userRoleModel{}).
		Where("role IN ?", roles).
		Where("user_id <> ?", excluding).
		Distinct().
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, translateError(err)
	}
	return ids, nil
}

// RolesOf returns the roles stored for userID, sorted by name.
func (r *UserRoleRepository) RolesOf(ctx context.Context, userID string) ([]domain.Role, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&userRoleModel{}).
		Where("user_id = ?", userID).
		Order("role").
		Pluck("role", &names).Error
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]domain.Role, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Role(n))
	}
	return out, nil
}
