package collect

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	CreateRun(ctx context.Context, run *Run) (string, error)
	UpdateRun(ctx context.Context, run *Run) error
	SaveRawRows(ctx context.Context, rows []RawRow) error
	LatestCompletedRun(ctx context.Context, year int) (Run, error)
	RawRows(ctx context.Context, runID string) ([]RawRow, error)
	ListRuns(ctx context.Context, year int, limit int) ([]Run, error)
}

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) (string, error) {
	const sql = `
		INSERT INTO collect_runs (year, max_pages, status, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text`

	var id string
	err := r.db.QueryRow(ctx, sql, run.Year, run.MaxPages, run.Status, run.StartedAt).Scan(&id)
	return id, err
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, run *Run) error {
	const sql = `
		UPDATE collect_runs SET
			finished_at = $1,
			status = $2,
			pages_fetched = $3,
			rows_saved = $4,
			rows_skipped = $5,
			rows_malformed = $6,
			error = $7
		WHERE id = $8`

	_, err := r.db.Exec(ctx, sql, run.FinishedAt, run.Status, run.PagesFetched, run.RowsSaved, run.RowsSkipped, run.RowsMalformed, run.Error, run.ID)
	return err
}

var rawColumns = []string{
	"run_id", "year", "page", "row_index", "name", "gender", "age", "race", "state", "country",
	"overall_place", "gender_place", "age_group_place", "finish_time", "pace",
}

func (r *PostgresRepo) SaveRawRows(ctx context.Context, rows []RawRow) error {
	if len(rows) == 0 {
		return nil
	}
	src := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		row := rows[i]
		runID, err := uuid.Parse(row.RunID)
		if err != nil {
			return nil, fmt.Errorf("run id %q: %w", row.RunID, err)
		}
		return []any{
			runID, row.Year, row.Page, row.RowIndex, row.Name, row.Gender, row.Age, row.Race,
			row.State, row.Country, row.OverallPlace, row.GenderPlace, row.AgeGroupPlace,
			row.FinishTime, row.Pace,
		}, nil
	})

	// COPY has no upsert; stage into a temp table so a re-flushed page is ignored.
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const stageSQL = `
		CREATE TEMP TABLE raw_results_stage (LIKE raw_results INCLUDING DEFAULTS)
		ON COMMIT DROP`
	if _, err := tx.Exec(ctx, stageSQL); err != nil {
		return fmt.Errorf("stage raw rows: %w", err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"raw_results_stage"}, rawColumns, src); err != nil {
		return fmt.Errorf("copy raw rows: %w", err)
	}
	const mergeSQL = `
		INSERT INTO raw_results SELECT * FROM raw_results_stage
		ON CONFLICT (run_id, page, row_index) DO NOTHING`
	if _, err := tx.Exec(ctx, mergeSQL); err != nil {
		return fmt.Errorf("merge raw rows: %w", err)
	}
	return tx.Commit(ctx)
}

const selectRunSQL = `
	SELECT id::text, year, started_at, finished_at, status, max_pages, pages_fetched,
		rows_saved, rows_skipped, rows_malformed, error
	FROM collect_runs`

func scanRun(row pgx.Row) (Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.Year, &run.StartedAt, &run.FinishedAt, &run.Status, &run.MaxPages,
		&run.PagesFetched, &run.RowsSaved, &run.RowsSkipped, &run.RowsMalformed, &run.Error)
	return run, err
}

func (r *PostgresRepo) LatestCompletedRun(ctx context.Context, year int) (Run, error) {
	sql := selectRunSQL + `
		WHERE year = $1 AND status = 'COMPLETED'
		ORDER BY finished_at DESC
		LIMIT 1`
	run, err := scanRun(r.db.QueryRow(ctx, sql, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, fmt.Errorf("completed run for %d: %w", year, ErrNotFound)
		}
		return Run{}, err
	}
	return run, nil
}

func (r *PostgresRepo) ListRuns(ctx context.Context, year int, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	sql := selectRunSQL + `
		WHERE year = $1
		ORDER BY started_at DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, sql, year, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) RawRows(ctx context.Context, runID string) ([]RawRow, error) {
	const sql = `
		SELECT run_id::text, year, page, row_index, name, gender, age, race, state, country,
			overall_place, gender_place, age_group_place, finish_time, pace
		FROM raw_results
		WHERE run_id = $1
		ORDER BY page ASC, row_index ASC`

	rows, err := r.db.Query(ctx, sql, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RawRow
	for rows.Next() {
		var row RawRow
		if err := rows.Scan(
			&row.RunID, &row.Year, &row.Page, &row.RowIndex, &row.Name, &row.Gender, &row.Age, &row.Race,
			&row.State, &row.Country, &row.OverallPlace, &row.GenderPlace, &row.AgeGroupPlace,
			&row.FinishTime, &row.Pace,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
