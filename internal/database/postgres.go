package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/models"
	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ConnectDB opens a pool and waits for the database to answer a ping, retrying
// with backoff while it comes up.
func ConnectDB(ctx context.Context, connStr string, maxConns int, attempts int) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(maxConns)

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	err = retry.Do(
		func() error {
			return dbpool.Ping(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Msg("database not reachable yet, retrying")
		}),
	)
	if err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	return dbpool, nil
}

type PostgresDBManager struct {
	dbpool *pgxpool.Pool
}

func NewPostgresDBManager(pool *pgxpool.Pool) *PostgresDBManager {
	return &PostgresDBManager{dbpool: pool}
}

func (m *PostgresDBManager) Ping(ctx context.Context) error {
	return m.dbpool.Ping(ctx)
}

// CreateTables creates the schema. "values" is a reserved word and stays quoted.
func (m *PostgresDBManager) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS file_versions (
			id SERIAL PRIMARY KEY,
			version VARCHAR(255) NOT NULL UNIQUE,
			file_name VARCHAR(255) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id SERIAL PRIMARY KEY,
			code INTEGER NOT NULL UNIQUE,
			name VARCHAR(100) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS "values" (
			id SERIAL PRIMARY KEY,
			project_id INTEGER NOT NULL REFERENCES projects (id),
			file_version_id INTEGER NOT NULL REFERENCES file_versions (id),
			date DATE NOT NULL,
			plan INTEGER NOT NULL,
			fact INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_values_file_version_date ON "values" (file_version_id, date);`,
		`CREATE TABLE IF NOT EXISTS import_records (
			id SERIAL PRIMARY KEY,
			file_name VARCHAR(255) NOT NULL,
			checksum VARCHAR(64) NOT NULL,
			status VARCHAR(50) NOT NULL CHECK (status IN ('DONE', 'FATAL')),
			row_count INTEGER NOT NULL DEFAULT 0,
			processed_at TIMESTAMP NOT NULL,
			errors jsonb
		);`,
	}

	for _, query := range queries {
		if _, err := m.dbpool.Exec(ctx, query); err != nil {
			return fmt.Errorf("error creating schema: %w", err)
		}
	}

	return nil
}

func (m *PostgresDBManager) InsertFileVersion(ctx context.Context, version string, fileName string) (*models.FileVersion, error) {
	query := `
	INSERT INTO file_versions (version, file_name)
	VALUES ($1, $2)
	RETURNING id, version, file_name;`

	fv := &models.FileVersion{}
	err := m.dbpool.QueryRow(ctx, query, version, fileName).Scan(&fv.ID, &fv.Version, &fv.FileName)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("error inserting file version %q", version))
	}

	return fv, nil
}

func (m *PostgresDBManager) GetFileVersionByVersion(ctx context.Context, version string) (*models.FileVersion, error) {
	query := `
	SELECT id, version, file_name
	FROM file_versions
	WHERE version = $1;`

	fv := &models.FileVersion{}
	err := m.dbpool.QueryRow(ctx, query, version).Scan(&fv.ID, &fv.Version, &fv.FileName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "file version", Key: version}
		}
		return nil, fmt.Errorf("error finding file version %q: %w", version, err)
	}

	return fv, nil
}

// InsertValue checks that both referenced rows exist and inserts the value in
// the same transaction.
func (m *PostgresDBManager) InsertValue(ctx context.Context, value models.Value) (int, error) {
	tx, err := m.dbpool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var found int
	err = tx.QueryRow(ctx, `SELECT id FROM projects WHERE id = $1;`, value.ProjectID).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &NotFoundError{Entity: "project", Key: value.ProjectID}
		}
		return 0, fmt.Errorf("error finding project %d: %w", value.ProjectID, err)
	}

	err = tx.QueryRow(ctx, `SELECT id FROM file_versions WHERE id = $1;`, value.FileVersionID).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &NotFoundError{Entity: "file version", Key: value.FileVersionID}
		}
		return 0, fmt.Errorf("error finding file version %d: %w", value.FileVersionID, err)
	}

	query := `
	INSERT INTO "values" (project_id, file_version_id, date, plan, fact)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id;`

	var id int
	err = tx.QueryRow(ctx, query, value.ProjectID, value.FileVersionID, value.Date, value.Plan, value.Fact).Scan(&id)
	if err != nil {
		return 0, classify(err, "error inserting value")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing transaction: %w", err)
	}

	return id, nil
}

// GetValuesForChart returns the values of a file version whose date lies in
// [from, to], both inclusive, ordered by date.
func (m *PostgresDBManager) GetValuesForChart(ctx context.Context, fileVersionID int, from time.Time, to time.Time) ([]models.Value, error) {
	query := `
	SELECT v.id, v.project_id, v.file_version_id, v.date, v.plan, v.fact
	FROM "values" v
	JOIN projects p ON p.id = v.project_id
	WHERE v.file_version_id = $1 AND v.date >= $2 AND v.date <= $3
	ORDER BY v.date, v.id;`

	rows, err := m.dbpool.Query(ctx, query, fileVersionID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying chart values: %w", err)
	}
	defer rows.Close()

	var values []models.Value
	for rows.Next() {
		var v models.Value
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.FileVersionID, &v.Date, &v.Plan, &v.Fact); err != nil {
			return nil, fmt.Errorf("error scanning chart value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over chart values: %w", err)
	}

	return values, nil
}

// InsertProjects inserts the projects in one transaction, skipping codes that
// already exist, and reports how many rows were created.
func (m *PostgresDBManager) InsertProjects(ctx context.Context, projects []models.Project) (int, error) {
	tx, err := m.dbpool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
	INSERT INTO projects (code, name)
	VALUES ($1, $2)
	ON CONFLICT (code) DO NOTHING;`

	inserted := 0
	for _, p := range projects {
		tag, err := tx.Exec(ctx, query, p.Code, p.Name)
		if err != nil {
			return 0, classify(err, fmt.Sprintf("error inserting project %d", p.Code))
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing transaction: %w", err)
	}

	return inserted, nil
}

func (m *PostgresDBManager) GetProjectIDsByCode(ctx context.Context, codes []int64) (map[int64]int, error) {
	ids := make(map[int64]int, len(codes))
	if len(codes) == 0 {
		return ids, nil
	}

	rows, err := m.dbpool.Query(ctx, `SELECT id, code FROM projects WHERE code = ANY($1);`, codes)
	if err != nil {
		return nil, fmt.Errorf("error querying projects by code: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var code int64
		if err := rows.Scan(&id, &code); err != nil {
			return nil, fmt.Errorf("error scanning project: %w", err)
		}
		ids[code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over projects: %w", err)
	}

	return ids, nil
}

func (m *PostgresDBManager) GetFileVersionIDsByVersion(ctx context.Context, versions []string) (map[string]int, error) {
	ids := make(map[string]int, len(versions))
	if len(versions) == 0 {
		return ids, nil
	}

	rows, err := m.dbpool.Query(ctx, `SELECT id, version FROM file_versions WHERE version = ANY($1);`, versions)
	if err != nil {
		return nil, fmt.Errorf("error querying file versions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var version string
		if err := rows.Scan(&id, &version); err != nil {
			return nil, fmt.Errorf("error scanning file version: %w", err)
		}
		ids[version] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over file versions: %w", err)
	}

	return ids, nil
}

func (m *PostgresDBManager) IsFileAlreadyImported(ctx context.Context, checksum string) (bool, error) {
	query := `
	SELECT id
	FROM import_records
	WHERE checksum = $1 AND status = 'DONE'
	LIMIT 1;`

	var id int
	err := m.dbpool.QueryRow(ctx, query, checksum).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error finding import record by checksum: %w", err)
	}

	return true, nil
}

// InsertImportedValues bulk copies the values and records the import as DONE in
// a single transaction, so either both are visible or neither is.
func (m *PostgresDBManager) InsertImportedValues(ctx context.Context, record models.ImportRecord, values []models.Value) (int64, error) {
	tx, err := m.dbpool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Column order must match the row built below.
	columnNames := []string{"project_id", "file_version_id", "date", "plan", "fact"}

	copySource := pgx.CopyFromSlice(len(values), func(i int) ([]any, error) {
		v := values[i]
		return []any{v.ProjectID, v.FileVersionID, v.Date, v.Plan, v.Fact}, nil
	})

	log.Ctx(ctx).Info().Int("rows", len(values)).Str("file", record.FileName).Msg("bulk loading values")
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"values"}, columnNames, copySource)
	if err != nil {
		return 0, classify(err, "unable to copy values")
	}

	query := `
	INSERT INTO import_records (file_name, checksum, status, row_count, processed_at)
	VALUES ($1, $2, $3, $4, $5);`

	_, err = tx.Exec(ctx, query, record.FileName, record.Checksum, IMPORT_STATUS_DONE, copied, record.ProcessedAt)
	if err != nil {
		return 0, fmt.Errorf("error inserting import record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing transaction: %w", err)
	}

	return copied, nil
}

func (m *PostgresDBManager) InsertFailedImport(ctx context.Context, record models.ImportRecord, errors any) error {
	query := `
	INSERT INTO import_records (file_name, checksum, status, row_count, processed_at, errors)
	VALUES ($1, $2, $3, $4, $5, $6);`

	_, err := m.dbpool.Exec(ctx, query, record.FileName, record.Checksum, IMPORT_STATUS_FATAL, record.RowCount, record.ProcessedAt, errors)
	if err != nil {
		return fmt.Errorf("error inserting failed import record: %w", err)
	}

	return nil
}
