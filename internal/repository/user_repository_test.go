package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/school-portal-api/internal/models"
)

func userRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "phone", "address", "department", "created_at", "updated_at"}).
		AddRow("u1", "Ann", "ann@example.com", "hash", "student", nil, nil, nil, now, now)
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT id, name, email, password_hash`).
		WithArgs("ann@example.com").
		WillReturnRows(userRows())

	user, err := repo.FindByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, models.RoleStudent, user.Role)
}

func TestUserRepositoryFindByEmailNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT id, name, email, password_hash`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := repo.Create(context.Background(), &models.User{Name: "Ann", Email: "ann@example.com", Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{Name: "Ann", Email: "ann@example.com", Role: models.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserRepositoryDeleteByIDAndRoleMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1 AND role = $2`)).
		WithArgs("ghost", models.RoleTeacher).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByIDAndRole(context.Background(), "ghost", models.RoleTeacher)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryCountByRole(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users WHERE role = $1`)).
		WithArgs(models.RoleStudent).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountByRole(context.Background(), models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}
