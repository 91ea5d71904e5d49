package database

import (
	"context"
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/models"
)

const (
	IMPORT_STATUS_DONE  = "DONE"
	IMPORT_STATUS_FATAL = "FATAL"
)

type DBManager interface {
	Ping(ctx context.Context) error
	CreateTables(ctx context.Context) error

	InsertFileVersion(ctx context.Context, version string, fileName string) (*models.FileVersion, error)
	GetFileVersionByVersion(ctx context.Context, version string) (*models.FileVersion, error)
	InsertValue(ctx context.Context, value models.Value) (int, error)
	GetValuesForChart(ctx context.Context, fileVersionID int, from time.Time, to time.Time) ([]models.Value, error)

	InsertProjects(ctx context.Context, projects []models.Project) (int, error)
	GetProjectIDsByCode(ctx context.Context, codes []int64) (map[int64]int, error)
	GetFileVersionIDsByVersion(ctx context.Context, versions []string) (map[string]int, error)

	IsFileAlreadyImported(ctx context.Context, checksum string) (bool, error)
	InsertImportedValues(ctx context.Context, record models.ImportRecord, values []models.Value) (int64, error)
	InsertFailedImport(ctx context.Context, record models.ImportRecord, errors any) error
}
