package repositories

import (
	"context"
	"testing"
	"time"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TableRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    TableRepository
	id      uuid.UUID
	context context.Context
}

func (suite *TableRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewTableRepo(mock)
	suite.id = uuid.New()
	suite.context = context.Background()
}

func (suite *TableRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestTableRepoTestSuite(t *testing.T) {
	suite.Run(t, new(TableRepoTestSuite))
}

func (suite *TableRepoTestSuite) tableRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "number", "seats", "status", "current_user_id", "created_at", "updated_at"})
}

func (suite *TableRepoTestSuite) TestLockByID_TakesRowLock() {
	now := time.Now()
	occupant := uuid.New()
	suite.mock.ExpectQuery(`FROM dining_tables WHERE id = \$1 FOR UPDATE`).
		WithArgs(suite.id).
		WillReturnRows(suite.tableRows().AddRow(suite.id, 4, 2, "OCCUPIED", &occupant, now, now))

	table, err := suite.repo.LockByID(suite.context, suite.id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.TableOccupied, table.Status)
	assert.Equal(suite.T(), occupant, *table.CurrentUserID)
}

func (suite *TableRepoTestSuite) TestLockByNumber_NotFound() {
	suite.mock.ExpectQuery(`FROM dining_tables WHERE number = \$1 FOR UPDATE`).
		WithArgs(12).
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.LockByNumber(suite.context, 12)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.Contains(suite.T(), err.Error(), "12")
}

func (suite *TableRepoTestSuite) TestGetByOccupant_NotSeated() {
	userID := uuid.New()
	suite.mock.ExpectQuery(`FROM dining_tables WHERE current_user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(suite.tableRows())

	_, err := suite.repo.GetByOccupant(suite.context, userID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *TableRepoTestSuite) TestCreate_DuplicateNumber() {
	table := &models.DiningTable{ID: suite.id, Number: 3, Seats: 4, Status: models.TableAvailable}
	suite.mock.ExpectQuery(`INSERT INTO dining_tables`).
		WithArgs(suite.id, 3, 4, models.TableAvailable).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := suite.repo.Create(suite.context, table)
	assert.ErrorIs(suite.T(), err, common.ErrConflict)
}

func (suite *TableRepoTestSuite) TestUpdate() {
	now := time.Now()
	occupant := uuid.New()
	table := &models.DiningTable{ID: suite.id, Number: 3, Seats: 4, Status: models.TableOccupied, CurrentUserID: &occupant}
	suite.mock.ExpectQuery(`UPDATE dining_tables SET seats = \$2, status = \$3, current_user_id = \$4`).
		WithArgs(suite.id, 4, models.TableOccupied, &occupant).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	assert.NoError(suite.T(), suite.repo.Update(suite.context, table))
	assert.Equal(suite.T(), now, table.UpdatedAt)
}
