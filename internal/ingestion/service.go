package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/database"
	"github.com/ThiagoRGoveia/plan-fact/internal/models"
	"github.com/rs/zerolog/log"
)

type ImportService struct {
	dbManager     database.DBManager
	fileProcessor Processor
	now           func() time.Time
}

func NewImportService(dbManager database.DBManager, processor Processor) *ImportService {
	return &ImportService{
		dbManager:     dbManager,
		fileProcessor: processor,
		now:           time.Now,
	}
}

type ImportResult struct {
	FileName string
	Checksum string
	// Skipped is set when a file with the same checksum was already imported.
	Skipped bool
	Rows    int64
}

// Execute imports the value rows of one spreadsheet. Either every row is
// committed or none is; a rejected file yields an *ImportError listing the
// rows that failed.
func (s *ImportService) Execute(ctx context.Context, filePath string) (*ImportResult, error) {
	logger := log.Ctx(ctx).With().Str("file", filePath).Logger()
	result := &ImportResult{FileName: filepath.Base(filePath)}

	// Step 1: skip files that were already imported.
	sum, err := s.fileProcessor.Checksum(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to checksum %s: %w", filePath, err)
	}
	result.Checksum = sum

	imported, err := s.dbManager.IsFileAlreadyImported(ctx, sum)
	if err != nil {
		return nil, err
	}
	if imported {
		logger.Info().Str("checksum", sum).Msg("file already imported, skipping")
		result.Skipped = true
		return result, nil
	}

	record := models.ImportRecord{
		FileName:    result.FileName,
		Checksum:    sum,
		ProcessedAt: s.now(),
	}

	// Step 2: parse the sheet.
	rows, parseErrs, err := s.fileProcessor.Parse(filePath)
	if err != nil {
		s.recordFailure(ctx, record, []models.RowError{{Row: -1, Message: "unreadable file", Err: err}})
		return nil, err
	}
	record.RowCount = len(rows) + len(parseErrs)
	logger.Info().Int("rows", len(rows)).Int("invalid", len(parseErrs)).Msg("parsed spreadsheet")

	// Step 3: resolve identifiers for every row before writing anything.
	values, resolveErrs, err := s.fileProcessor.Resolve(ctx, rows)
	if err != nil {
		return nil, err
	}

	collector := &errorCollector{}
	collector.add(parseErrs...)
	collector.add(resolveErrs...)
	if !collector.empty() {
		importErr := &ImportError{FileName: result.FileName, Errors: collector.sorted(), Total: collector.total}
		s.recordFailure(ctx, record, importErr.Errors)
		return nil, importErr
	}

	// Step 4: commit all values together with the import record.
	copied, err := s.dbManager.InsertImportedValues(ctx, record, values)
	if err != nil {
		s.recordFailure(ctx, record, []models.RowError{{Row: -1, Message: "bulk insert failed", Err: err}})
		return nil, fmt.Errorf("failed to import %s: %w", filePath, err)
	}
	result.Rows = copied

	logger.Info().Int64("rows", copied).Msg("import finished")
	return result, nil
}

// recordFailure stores a FATAL import record. It runs outside the aborted
// transaction and only logs when it fails itself.
func (s *ImportService) recordFailure(ctx context.Context, record models.ImportRecord, errs []models.RowError) {
	if err := s.dbManager.InsertFailedImport(ctx, record, errs); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("file", record.FileName).Msg("failed to record failed import")
	}
}
