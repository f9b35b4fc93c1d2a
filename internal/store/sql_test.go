package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockSQL(t *testing.T) (*SQL[note], sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	notes, err := NewSQL[note](db)
	require.NoError(t, err)
	return notes, mock
}

func noteRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "title", "slug", "status", "tags", "views", "published_at"})
}

func TestSQLName(t *testing.T) {
	notes, _ := newMockSQL(t)
	assert.Equal(t, "notes", notes.Name())
}

func TestSQLGetByID(t *testing.T) {
	notes, mock := newMockSQL(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT \* FROM "notes" WHERE "id" = \$1`).
		WillReturnRows(noteRows().AddRow("n1", now, now, "Hello", "hello", "draft", `["a","b"]`, 3, nil))

	got, err := notes.GetByID(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", got.ID)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
	assert.EqualValues(t, 3, got.Views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGetByIDNotFound(t *testing.T) {
	notes, mock := newMockSQL(t)
	mock.ExpectQuery(`SELECT \* FROM "notes" WHERE "id" = \$1`).WillReturnRows(noteRows())

	_, err := notes.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLListBuildsFilters(t *testing.T) {
	notes, mock := newMockSQL(t)
	mock.ExpectQuery(`SELECT \* FROM "notes" WHERE "status" = \$1 AND "tags" @> \$2::jsonb ORDER BY "published_at" DESC`).
		WillReturnRows(noteRows())

	_, err := notes.List(context.Background(), Query{}.
		Where("status", Eq, "published").
		Where("tags", Contains, "city").
		OrderBy("published_at", true).
		Take(5))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRejectsUnknownFieldsWithoutQuerying(t *testing.T) {
	notes, mock := newMockSQL(t)
	_, err := notes.List(context.Background(), Query{}.Where("1=1; --", Eq, 1))
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, notes.Update(context.Background(), "n1", map[string]any{"password": "x"}), ErrInvalid)
	assert.ErrorIs(t, notes.Increment(context.Background(), "n1", "nope", 1), ErrInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCreate(t *testing.T) {
	notes, mock := newMockSQL(t)
	mock.ExpectExec(`INSERT INTO "notes"`).WillReturnResult(sqlmock.NewResult(0, 1))

	n := note{Title: "Hello", Views: 12}
	id, err := notes.Create(context.Background(), &n)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, n.ID)
	assert.Zero(t, n.Views)
	assert.False(t, n.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLUpdate(t *testing.T) {
	notes, mock := newMockSQL(t)
	mock.ExpectExec(`UPDATE "notes" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "notes" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, notes.Update(context.Background(), "n1", map[string]any{"title": "x", "tags": []string{"a"}}))
	assert.ErrorIs(t, notes.Update(context.Background(), "gone", map[string]any{"title": "x"}), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDeleteManyRollsBackOnMissing(t *testing.T) {
	notes, mock := newMockSQL(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "notes" WHERE "id" IN`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := notes.DeleteMany(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDeleteManyCommits(t *testing.T) {
	notes, mock := newMockSQL(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "notes" WHERE "id" IN`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, notes.DeleteMany(context.Background(), []string{"a", "b"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLIncrement(t *testing.T) {
	notes, mock := newMockSQL(t)
	mock.ExpectExec(`UPDATE "notes" SET "views"=COALESCE\("views", 0\) \+ \$1 WHERE "id" = \$2`).
		WithArgs(1, "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, notes.Increment(context.Background(), "n1", "views", 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMutateLocksRow(t *testing.T) {
	notes, mock := newMockSQL(t)
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "notes" WHERE "id" = \$1 .*FOR UPDATE`).
		WillReturnRows(noteRows().AddRow("n1", now, now, "Hello", "hello", "draft", `[]`, 0, nil))
	mock.ExpectExec(`UPDATE "notes" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := notes.Mutate(context.Background(), "n1", func(n *note) error {
		n.Status = "published"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "published", got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
