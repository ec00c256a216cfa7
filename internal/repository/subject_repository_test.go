package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/school-portal-api/internal/models"
)

func TestSubjectRepositoryListWithTeachers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "code", "credits", "description", "created_at", "updated_at", "teacher", "enrolled_count"}).
		AddRow("sub1", "Math", "MATH101", 3, nil, now, now, "Prof Smith", 12).
		AddRow("sub2", "Physics", "PHY101", 4, nil, now, now, "Not assigned", 0)
	mock.ExpectQuery(`SELECT s\.id, s\.name, s\.code`).WillReturnRows(rows)

	subjects, err := repo.ListWithTeachers(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Prof Smith", subjects[0].Teacher)
	assert.Equal(t, 12, subjects[0].EnrolledCount)
	assert.Equal(t, "Not assigned", subjects[1].Teacher)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateDuplicateCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec(`INSERT INTO subjects`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "subjects_code_key"})

	err := repo.Create(context.Background(), &models.Subject{Name: "Math", Code: "MATH101", Credits: 3})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryExistsByCodeExcludesSelf(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM subjects WHERE UPPER(code) = UPPER($1) AND id <> $2 LIMIT 1`)).
		WithArgs("MATH101", "sub1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByCode(context.Background(), "MATH101", "sub1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubjectRepositoryCountByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM subjects WHERE id IN`).
		WithArgs("a", "b").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByIDs(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSubjectRepositoryCountByIDsEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	count, err := repo.CountByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSubjectRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subjects WHERE id = $1`)).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	require.Error(t, err)
}
