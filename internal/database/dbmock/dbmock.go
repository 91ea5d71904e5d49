// Package dbmock provides a testify mock of database.DBManager.
package dbmock

import (
	"context"
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/database"
	"github.com/ThiagoRGoveia/plan-fact/internal/models"
	"github.com/stretchr/testify/mock"
)

var _ database.DBManager = (*MockDBManager)(nil)

// MockDBManager is a mock implementation of the DBManager interface.
type MockDBManager struct {
	mock.Mock
}

func (m *MockDBManager) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDBManager) CreateTables(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDBManager) InsertFileVersion(ctx context.Context, version string, fileName string) (*models.FileVersion, error) {
	args := m.Called(ctx, version, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FileVersion), args.Error(1)
}

func (m *MockDBManager) GetFileVersionByVersion(ctx context.Context, version string) (*models.FileVersion, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FileVersion), args.Error(1)
}

func (m *MockDBManager) InsertValue(ctx context.Context, value models.Value) (int, error) {
	args := m.Called(ctx, value)
	return args.Int(0), args.Error(1)
}

func (m *MockDBManager) GetValuesForChart(ctx context.Context, fileVersionID int, from time.Time, to time.Time) ([]models.Value, error) {
	args := m.Called(ctx, fileVersionID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Value), args.Error(1)
}

func (m *MockDBManager) InsertProjects(ctx context.Context, projects []models.Project) (int, error) {
	args := m.Called(ctx, projects)
	return args.Int(0), args.Error(1)
}

func (m *MockDBManager) GetProjectIDsByCode(ctx context.Context, codes []int64) (map[int64]int, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockDBManager) GetFileVersionIDsByVersion(ctx context.Context, versions []string) (map[string]int, error) {
	args := m.Called(ctx, versions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockDBManager) IsFileAlreadyImported(ctx context.Context, checksum string) (bool, error) {
	args := m.Called(ctx, checksum)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBManager) InsertImportedValues(ctx context.Context, record models.ImportRecord, values []models.Value) (int64, error) {
	args := m.Called(ctx, record, values)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDBManager) InsertFailedImport(ctx context.Context, record models.ImportRecord, errors any) error {
	args := m.Called(ctx, record, errors)
	return args.Error(0)
}
