package ingestion

import (
	"context"
	"fmt"
	"slices"

	"github.com/ThiagoRGoveia/plan-fact/internal/database"
	"github.com/ThiagoRGoveia/plan-fact/internal/models"
	"github.com/ThiagoRGoveia/plan-fact/internal/parser"
	"github.com/ThiagoRGoveia/plan-fact/pkg/checksum"
)

// Processor defines the file level steps of an import.
type Processor interface {
	Checksum(filePath string) (string, error)
	Parse(filePath string) ([]models.ImportRow, []models.RowError, error)
	Resolve(ctx context.Context, rows []models.ImportRow) ([]models.Value, []models.RowError, error)
}

// FileProcessor reads an import spreadsheet and turns its rows into values.
type FileProcessor struct {
	dbManager database.DBManager
	sheet     string
}

// NewFileProcessor creates a FileProcessor reading the given sheet, or the
// first sheet when sheet is empty.
func NewFileProcessor(dbManager database.DBManager, sheet string) *FileProcessor {
	return &FileProcessor{
		dbManager: dbManager,
		sheet:     sheet,
	}
}

func (fp *FileProcessor) Checksum(filePath string) (string, error) {
	return checksum.GetFileChecksum(filePath)
}

func (fp *FileProcessor) Parse(filePath string) ([]models.ImportRow, []models.RowError, error) {
	return parser.ParseXLSX(filePath, fp.sheet)
}

// Resolve maps project codes and version labels to ids with one lookup each.
// Rows whose identifiers are unknown come back as row errors naming them.
func (fp *FileProcessor) Resolve(ctx context.Context, rows []models.ImportRow) ([]models.Value, []models.RowError, error) {
	codeSet := make(map[int64]struct{})
	versionSet := make(map[string]struct{})
	for _, row := range rows {
		codeSet[row.ProjectCode] = struct{}{}
		versionSet[row.Version] = struct{}{}
	}

	codes := make([]int64, 0, len(codeSet))
	for code := range codeSet {
		codes = append(codes, code)
	}
	versions := make([]string, 0, len(versionSet))
	for version := range versionSet {
		versions = append(versions, version)
	}
	slices.Sort(codes)
	slices.Sort(versions)

	projectIDs, err := fp.dbManager.GetProjectIDsByCode(ctx, codes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve project codes: %w", err)
	}
	versionIDs, err := fp.dbManager.GetFileVersionIDsByVersion(ctx, versions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve file versions: %w", err)
	}

	values := make([]models.Value, 0, len(rows))
	var rowErrs []models.RowError
	for _, row := range rows {
		projectID, projectFound := projectIDs[row.ProjectCode]
		if !projectFound {
			rowErrs = append(rowErrs, models.RowError{
				Row:     row.Row,
				Message: "unresolved reference",
				Err:     &database.NotFoundError{Entity: "project with code", Key: row.ProjectCode},
			})
		}
		versionID, versionFound := versionIDs[row.Version]
		if !versionFound {
			rowErrs = append(rowErrs, models.RowError{
				Row:     row.Row,
				Message: "unresolved reference",
				Err:     &database.NotFoundError{Entity: "file version", Key: fmt.Sprintf("%q", row.Version)},
			})
		}
		if !projectFound || !versionFound {
			continue
		}

		values = append(values, models.Value{
			ProjectID:     projectID,
			FileVersionID: versionID,
			Date:          row.Date,
			Plan:          row.Plan,
			Fact:          row.Fact,
		})
	}

	return values, rowErrs, nil
}
