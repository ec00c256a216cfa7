package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/pkg/database"
)

const userColumns = `id, name, email, password_hash, role, phone, address, department, created_at, updated_at`

// UserRepository provides database access for user records.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByIDAndRole returns a user filtered by id and role.
func (r *UserRepository) FindByIDAndRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND role = $2 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id, role); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id and role: %w", err)
	}
	return &user, nil
}

// ListByRole returns all users with the given role ordered by name.
func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = $1 ORDER BY name ASC`, userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}

// ExistsByEmail checks email uniqueness, optionally excluding one id.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := `SELECT 1 FROM users WHERE email = $1`
	args := []interface{}{email}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+` LIMIT 1`, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check user email: %w", err)
	}
	return true, nil
}

// Create inserts a new user. Unique email violations surface as ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, name, email, password_hash, role, phone, address, department, created_at, updated_at)
		VALUES (:id, :name, :email, :password_hash, :role, :phone, :address, :department, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update persists mutable fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET name = :name, email = :email, password_hash = :password_hash,
		phone = :phone, address = :address, department = :department, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// DeleteByIDAndRole removes a user matching id and role. Dependent enrollment,
// teaching-assignment and coursework rows cascade at the store level.
func (r *UserRepository) DeleteByIDAndRole(ctx context.Context, id string, role models.UserRole) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1 AND role = $2`, id, role)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted user rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByRole returns the number of users with the given role.
func (r *UserRepository) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role = $1`, role); err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return count, nil
}
