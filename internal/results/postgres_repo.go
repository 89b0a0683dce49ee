package results

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

var recordColumns = []string{
	"dataset_id", "position", "year", "name", "age", "age_group", "gender", "race",
	"state", "country", "is_us", "is_local", "census_region", "census_division",
	"overall_place", "gender_place", "age_group_place", "finish_seconds", "pace_seconds",
	"overall_percentile", "gender_percentile", "age_group_percentile",
}

const selectRecordColumns = `
	r.dataset_id::text, r.year, r.name, r.age, r.age_group, r.gender, r.race, r.state, r.country,
	r.is_us, r.is_local, r.census_region, r.census_division,
	r.overall_place, r.gender_place, r.age_group_place, r.finish_seconds, r.pace_seconds,
	r.overall_percentile, r.gender_percentile, r.age_group_percentile`

func (r *PostgresRepo) SaveDataset(ctx context.Context, ds *Dataset, records []Record) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// serialise writers of the same year so versions stay gapless
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", int64(ds.Year)); err != nil {
		return fmt.Errorf("lock year %d: %w", ds.Year, err)
	}

	var version int
	err = tx.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) + 1 FROM race_datasets WHERE year = $1", ds.Year).Scan(&version)
	if err != nil {
		return fmt.Errorf("next dataset version: %w", err)
	}

	const supersedeSQL = `
		UPDATE race_datasets SET superseded_at = now()
		WHERE year = $1 AND superseded_at IS NULL`
	if _, err := tx.Exec(ctx, supersedeSQL, ds.Year); err != nil {
		return fmt.Errorf("supersede dataset: %w", err)
	}

	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}
	var sourceRunID any
	if ds.SourceRunID != "" {
		sourceRunID = ds.SourceRunID
	}

	const insertSQL = `
		INSERT INTO race_datasets (id, year, version, source_run_id, record_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	var createdAt time.Time
	if err := tx.QueryRow(ctx, insertSQL, ds.ID, ds.Year, version, sourceRunID, len(records)).Scan(&createdAt); err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	datasetID, err := uuid.Parse(ds.ID)
	if err != nil {
		return fmt.Errorf("dataset id %q: %w", ds.ID, err)
	}
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = []any{
			datasetID, i + 1, rec.Year, rec.Name, rec.Age, rec.AgeGroup, rec.Gender, rec.Race,
			rec.State, rec.Country, rec.IsUS, rec.IsLocal, rec.CensusRegion, rec.CensusDivision,
			rec.OverallPlace, rec.GenderPlace, rec.AgeGroupPlace, rec.FinishSeconds, rec.PaceSeconds,
			rec.OverallPercentile, rec.GenderPercentile, rec.AgeGroupPercentile,
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"race_results"}, recordColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	ds.Version = version
	ds.RecordCount = len(records)
	ds.CreatedAt = createdAt
	ds.SupersededAt = nil
	return nil
}

const selectDatasetSQL = `
	SELECT id::text, year, version, COALESCE(source_run_id::text, ''), record_count, created_at, superseded_at
	FROM race_datasets`

func scanDataset(row pgx.Row) (Dataset, error) {
	var d Dataset
	err := row.Scan(&d.ID, &d.Year, &d.Version, &d.SourceRunID, &d.RecordCount, &d.CreatedAt, &d.SupersededAt)
	return d, err
}

func (r *PostgresRepo) queryDatasets(ctx context.Context, sql string, args ...any) ([]Dataset, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CurrentDatasets(ctx context.Context) ([]Dataset, error) {
	return r.queryDatasets(ctx, selectDatasetSQL+" WHERE superseded_at IS NULL ORDER BY year ASC")
}

func (r *PostgresRepo) CurrentDataset(ctx context.Context, year int) (Dataset, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, selectDatasetSQL+" WHERE year = $1 AND superseded_at IS NULL", year)
	d, err := scanDataset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dataset{}, fmt.Errorf("dataset for %d: %w", year, ErrNotFound)
		}
		return Dataset{}, err
	}
	return d, nil
}

func (r *PostgresRepo) DatasetHistory(ctx context.Context, year int) ([]Dataset, error) {
	out, err := r.queryDatasets(ctx, selectDatasetSQL+" WHERE year = $1 ORDER BY version DESC", year)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("datasets for %d: %w", year, ErrNotFound)
	}
	return out, nil
}

func buildWhere(q Query) (string, []any) {
	clauses := []string{"d.superseded_at IS NULL"}
	args := []any{}
	argn := 1

	if len(q.Years) > 0 {
		clauses = append(clauses, fmt.Sprintf("r.year = ANY($%d)", argn))
		args = append(args, q.Years)
		argn++
	}

	if q.Gender != "" {
		clauses = append(clauses, fmt.Sprintf("r.gender = $%d", argn))
		args = append(args, q.Gender)
		argn++
	}

	if q.AgeGroup != "" {
		clauses = append(clauses, fmt.Sprintf("r.age_group = $%d", argn))
		args = append(args, q.AgeGroup)
		argn++
	}

	if q.State != "" {
		clauses = append(clauses, fmt.Sprintf("r.state = $%d", argn))
		args = append(args, strings.ToUpper(q.State))
		argn++
	}

	if q.Region != "" {
		clauses = append(clauses, fmt.Sprintf("r.census_region = $%d", argn))
		args = append(args, q.Region)
		argn++
	}

	if q.LocalOnly {
		clauses = append(clauses, "r.is_local")
	}

	if q.Name != "" {
		clauses = append(clauses, fmt.Sprintf("r.name ILIKE $%d", argn))
		args = append(args, "%"+q.Name+"%")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func orderBy(q Query) string {
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	switch q.Sort {
	case SortFinish:
		return fmt.Sprintf("ORDER BY r.finish_seconds %s, r.year ASC, r.position ASC", dir)
	case SortPace:
		return fmt.Sprintf("ORDER BY r.pace_seconds %s, r.year ASC, r.position ASC", dir)
	case SortAge:
		return fmt.Sprintf("ORDER BY r.age %s NULLS LAST, r.year ASC, r.position ASC", dir)
	case SortName:
		return fmt.Sprintf("ORDER BY r.name %s, r.year ASC, r.position ASC", dir)
	default:
		return fmt.Sprintf("ORDER BY r.year %s, r.position %s", dir, dir)
	}
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.DatasetID, &rec.Year, &rec.Name, &rec.Age, &rec.AgeGroup, &rec.Gender, &rec.Race,
			&rec.State, &rec.Country, &rec.IsUS, &rec.IsLocal, &rec.CensusRegion, &rec.CensusDivision,
			&rec.OverallPlace, &rec.GenderPlace, &rec.AgeGroupPlace, &rec.FinishSeconds, &rec.PaceSeconds,
			&rec.OverallPercentile, &rec.GenderPercentile, &rec.AgeGroupPercentile,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Record, int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where, args := buildWhere(q)
	from := "FROM race_results r JOIN race_datasets d ON d.id = r.dataset_id"

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) %s %s", from, where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argn := len(args) + 1
	dataSQL := fmt.Sprintf(`
		SELECT %s
		%s
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		selectRecordColumns, from, where, orderBy(q), argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	rows, err := r.db.Query(ctx, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	out, err := scanRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepo) All(ctx context.Context, q Query) ([]Record, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where, args := buildWhere(q)
	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM race_results r JOIN race_datasets d ON d.id = r.dataset_id
		%s
		%s`,
		selectRecordColumns, where, orderBy(q))

	rows, err := r.db.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}
