package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort/infras/otel/mocks"
	"resort/infras/postgres"
	"resort/shared"
	"resort/shared/dto"
	"resort/shared/model"
	"resort/shared/repository"
)

type stay struct {
	ID        string `db:"id"`
	GuestName string `db:"guest_name"`
	RoomTitle string `db:"room_title" table:"rooms" column:"title"`
	model.Metadata
}

func (stay) GetJoinQuery() string {
	return "LEFT JOIN rooms ON rooms.id = stays.room_id"
}

const selectStays = "SELECT stays.id, stays.guest_name, rooms.title AS room_title, stays.created_at, stays.modified_at, " +
	"stays.created_by, stays.modified_by FROM stays LEFT JOIN rooms ON rooms.id = stays.room_id"

func newRepository(t *testing.T) (repository.Repository[stay], sqlmock.Sqlmock, *sqlx.DB) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	db := sqlx.NewDb(sqlDB, "postgres")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	conn := &postgres.Connection{Read: db, Write: db}

	return repository.NewRepository[stay]("stay", "stays", "id", conn, mocks.NewOtel()), mock, db
}

func TestRepository_Get(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectPrepare(selectStays + " WHERE (stays.id = $1)").
		ExpectQuery().
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "guest_name", "room_title"}).AddRow("s-1", "Anita Rao", "Valley Cottage"))

	got, err := repo.Get(context.Background(), shared.FilterByID("s-1", "id", "stays"))

	require.NoError(t, err)
	assert.Equal(t, "Anita Rao", got.GuestName)
	assert.Equal(t, "Valley Cottage", got.RoomTitle)
}

func TestRepository_GetMissingReturnsZero(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectPrepare(selectStays + " WHERE (stays.id = $1)").
		ExpectQuery().
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.Get(context.Background(), shared.FilterByID("missing", "id", "stays"))

	require.NoError(t, err)
	assert.Empty(t, got.ID)
}

func TestRepository_GetAllSortsAndPages(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectPrepare(selectStays + " ORDER BY stays.guest_name DESC LIMIT $1 OFFSET $2").
		ExpectQuery().
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "guest_name"}).AddRow("s-11", "Vikram").AddRow("s-12", "Meera"))

	got, err := repo.GetAll(context.Background(), dto.QueryParams{Page: 2, Limit: 10, SortBy: "guest_name", SortDir: dto.SortDirDesc}, dto.FilterGroup{})

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRepository_GetAllIgnoresJoinedSortColumn(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectPrepare(selectStays + " LIMIT $1").
		ExpectQuery().
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetAll(context.Background(), dto.QueryParams{Limit: 5, SortBy: "room_title", SortDir: dto.SortDirAsc}, dto.FilterGroup{})

	require.NoError(t, err)
}

func TestRepository_Insert(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectExec("INSERT INTO stays (id, guest_name, created_at, modified_at, created_by, modified_by) "+
		"VALUES ($1, $2, $3, $4, $5, $6)").
		WithArgs("s-1", "Anita Rao", sqlmock.AnyArg(), sqlmock.AnyArg(), "guest-1", "guest-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), stay{ID: "s-1", GuestName: "Anita Rao", Metadata: shared.NewMetadata("guest-1")})

	require.NoError(t, err)
}

func TestRepository_ExistAndCount(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectPrepare("SELECT EXISTS(SELECT 1 FROM stays WHERE (stays.id = $1))").
		ExpectQuery().
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectPrepare("SELECT COUNT(stays.id) FROM stays LEFT JOIN rooms ON rooms.id = stays.room_id").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	exist, err := repo.Exist(context.Background(), shared.FilterByID("s-1", "id", "stays"))
	require.NoError(t, err)
	assert.True(t, exist)

	count, err := repo.Count(context.Background(), dto.FilterGroup{})
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestRepository_UpdateTxAffected(t *testing.T) {
	repo, mock, db := newRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE stays SET guest_name = $1, modified_at = $2 WHERE (stays.id = $3)").
		WithArgs("Anita R.", sqlmock.AnyArg(), "s-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)

	affected, err := repo.UpdateTxAffected(context.Background(), tx,
		map[string]any{"guest_name": "Anita R.", "modified_at": time.Now()},
		shared.FilterByID("s-1", "id", "stays"))

	require.NoError(t, err)
	assert.Zero(t, affected)
	require.NoError(t, tx.Rollback())
}

func TestRepository_RequiresFilter(t *testing.T) {
	repo, _, _ := newRepository(t)

	assert.Error(t, repo.Delete(context.Background(), dto.FilterGroup{}))
	assert.Error(t, repo.Update(context.Background(), map[string]any{"guest_name": "x"}, dto.FilterGroup{}))

	_, err := repo.Exist(context.Background(), dto.FilterGroup{})
	assert.Error(t, err)
}
