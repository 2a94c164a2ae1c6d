package services

import (
	"context"
	"errors"
	"testing"

	"weather-api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestResolve(t *testing.T) {
	db := setupTestDB(t)
	dir := NewCityDirectory(db)
	ctx := context.Background()

	kharkiv, err := dir.Create(ctx, "Kharkiv")
	require.NoError(t, err)
	dnipro, err := dir.Create(ctx, "Dnipro")
	require.NoError(t, err)

	tests := []struct {
		name    string
		lookup  string
		wantID  uint
		wantErr error
	}{
		{name: "exact", lookup: "Kharkiv", wantID: kharkiv.ID},
		{name: "other city", lookup: "Dnipro", wantID: dnipro.ID},
		{name: "lower case", lookup: "kharkiv", wantID: kharkiv.ID},
		{name: "upper case", lookup: "DNIPRO", wantID: dnipro.ID},
		{name: "unknown", lookup: "Unknown", wantErr: ErrNotFound},
		{name: "empty", lookup: "", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := dir.Resolve(ctx, tt.lookup)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	dir := NewCityDirectory(db)
	ctx := context.Background()

	_, err := dir.Create(ctx, "Poltava")
	require.NoError(t, err)

	_, err = dir.Create(ctx, "poltava")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateRejectsDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	dir := NewCityDirectory(db)
	ctx := context.Background()

	kharkiv, err := dir.Create(ctx, "Kharkiv")
	require.NoError(t, err)
	dnipro, err := dir.Create(ctx, "Dnipro")
	require.NoError(t, err)

	err = dir.Update(ctx, dnipro.ID, "KHARKIV")
	assert.ErrorIs(t, err, ErrConflict)

	id, err := dir.Resolve(ctx, "Dnipro")
	require.NoError(t, err)
	assert.Equal(t, dnipro.ID, id)
	id, err = dir.Resolve(ctx, "kharkiv")
	require.NoError(t, err)
	assert.Equal(t, kharkiv.ID, id)

	// Changing only the case of a city's own name is not a conflict
	require.NoError(t, dir.Update(ctx, kharkiv.ID, "KHARKIV"))
	city, err := dir.Get(ctx, kharkiv.ID)
	require.NoError(t, err)
	assert.Equal(t, "KHARKIV", city.Name)
}

func TestCityCRUD(t *testing.T) {
	db := setupTestDB(t)
	dir := NewCityDirectory(db)
	ctx := context.Background()

	city, err := dir.Create(ctx, "Lviv")
	require.NoError(t, err)
	assert.NotZero(t, city.ID)

	got, err := dir.Get(ctx, city.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lviv", got.Name)

	require.NoError(t, dir.Update(ctx, city.ID, "Lviv Oblast"))
	got, err = dir.Get(ctx, city.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lviv Oblast", got.Name)

	cities, err := dir.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, 1)

	require.NoError(t, dir.Delete(ctx, city.ID))
	_, err = dir.Get(ctx, city.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCityMissingIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	dir := NewCityDirectory(db)
	ctx := context.Background()

	assert.ErrorIs(t, dir.Update(ctx, 404, "Nowhere"), ErrNotFound)
	assert.ErrorIs(t, dir.Delete(ctx, 404), ErrNotFound)
	_, err := dir.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCityCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	cityID := seedKharkiv(t, db)

	_, err := NewStatisticsAggregator(db).Compute(ctx, cityID, nil)
	require.NoError(t, err)

	require.NoError(t, NewCityDirectory(db).Delete(ctx, cityID))

	var measurements, stats int64
	require.NoError(t, db.Model(&models.Measurement{}).Count(&measurements).Error)
	require.NoError(t, db.Model(&models.Statistic{}).Count(&stats).Error)
	assert.Zero(t, measurements)
	assert.Zero(t, stats)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		mock.ExpectClose()
		sqlDB.Close()
	})
	return db, mock
}

func TestCityUpdateConcurrencyConflict(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `cities` WHERE LOWER\\(name\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE `cities` SET `name`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `cities`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := NewCityDirectory(db).Update(context.Background(), 1, "Kyiv")
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityUpdateVanishedRowIsNotFound(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `cities` WHERE LOWER\\(name\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE `cities` SET `name`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `cities`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	err := NewCityDirectory(db).Update(context.Background(), 1, "Kyiv")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityUpdatePersistenceFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	dbErr := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `cities` WHERE LOWER\\(name\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE `cities` SET `name`").WillReturnError(dbErr)
	mock.ExpectRollback()

	err := NewCityDirectory(db).Update(context.Background(), 1, "Kyiv")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeasurementUpdateConcurrencyConflict(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec("UPDATE `measurements` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `measurements`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := NewMeasurementStore(db).Update(context.Background(), 1, t0, MeasurementUpdate{Temperature: 3})
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

