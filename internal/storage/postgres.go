package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateSession inserts a new session record
func (r *PostgresRepository) CreateSession(ctx context.Context, s *models.Session) error {
	questionsJSON, err := json.Marshal(s.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		INSERT INTO sessions (id, candidate_name, status, start_time, end_time, current_question, questions, dropped_samples)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID,
		s.CandidateName,
		string(s.Status),
		s.StartTime,
		nullTime(s.EndTime),
		s.CurrentQuestion,
		questionsJSON,
		s.DroppedSamples,
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// UpdateSession updates an existing session record
func (r *PostgresRepository) UpdateSession(ctx context.Context, s *models.Session) error {
	query := `
		UPDATE sessions
		SET status = $2, end_time = $3, current_question = $4, dropped_samples = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		s.ID,
		string(s.Status),
		nullTime(s.EndTime),
		s.CurrentQuestion,
		s.DroppedSamples,
	)

	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", s.ID)
	}

	return nil
}

// SaveReport embeds the final report into its session row
func (r *PostgresRepository) SaveReport(ctx context.Context, rep *models.Report) error {
	feedbackJSON, err := json.Marshal(rep.Feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	query := `
		UPDATE sessions
		SET report_id = $2,
		    eye_contact_percentage = $3,
		    confidence_score = $4,
		    speech_clarity = $5,
		    overall_score = $6,
		    feedback = $7,
		    timed_out = $8,
		    report_created_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		rep.SessionID,
		rep.ID,
		rep.EyeContactPercentage,
		rep.ConfidenceScore,
		rep.SpeechClarity,
		rep.OverallScore,
		feedbackJSON,
		rep.TimedOut,
		rep.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", rep.SessionID)
	}

	return nil
}

const sessionColumns = `
	id, candidate_name, status, start_time, end_time, current_question, questions, dropped_samples,
	report_id, eye_contact_percentage, confidence_score, speech_clarity, overall_score, feedback, timed_out, report_created_at
`

// GetSession retrieves a session summary by ID, with its report when
// completed. Returns nil when not found.
func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*models.SessionSummary, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	summary, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return summary, nil
}

// ListSessions returns session summaries matching filters, newest first
func (r *PostgresRepository) ListSessions(ctx context.Context, filters models.ListFilters) ([]*models.SessionSummary, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	query += " ORDER BY start_time DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.SessionSummary

	for rows.Next() {
		summary, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.SessionSummary, error) {
	var (
		summary       models.SessionSummary
		statusStr     string
		endTime       sql.NullTime
		questionsJSON []byte

		reportID        sql.NullString
		eyeContact      sql.NullFloat64
		confidence      sql.NullFloat64
		clarity         sql.NullFloat64
		overall         sql.NullFloat64
		feedbackJSON    []byte
		timedOut        sql.NullBool
		reportCreatedAt sql.NullTime
	)

	err := row.Scan(
		&summary.ID,
		&summary.CandidateName,
		&statusStr,
		&summary.StartTime,
		&endTime,
		&summary.CurrentQuestion,
		&questionsJSON,
		&summary.DroppedSamples,
		&reportID,
		&eyeContact,
		&confidence,
		&clarity,
		&overall,
		&feedbackJSON,
		&timedOut,
		&reportCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	summary.Status = models.SessionStatus(statusStr)
	if endTime.Valid {
		summary.EndTime = &endTime.Time
	}

	var questions []string
	if err := json.Unmarshal(questionsJSON, &questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	summary.QuestionCount = len(questions)

	if reportID.Valid {
		rep := &models.Report{
			ID:                   reportID.String,
			SessionID:            summary.ID,
			EyeContactPercentage: eyeContact.Float64,
			ConfidenceScore:      confidence.Float64,
			SpeechClarity:        clarity.Float64,
			OverallScore:         overall.Float64,
			TimedOut:             timedOut.Bool,
			CreatedAt:            reportCreatedAt.Time,
		}
		if len(feedbackJSON) > 0 {
			if err := json.Unmarshal(feedbackJSON, &rep.Feedback); err != nil {
				return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
			}
		}
		summary.Report = rep
	}

	return &summary, nil
}

// GetClientByApiKey retrieves an API client by key. Returns nil when the
// key is unknown.
func (r *PostgresRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	query := `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions, metadata
		FROM api_clients
		WHERE api_key = $1
	`

	var (
		client          models.ApiClient
		lastUsedAt      sql.NullTime
		permissionsJSON []byte
		metadataJSON    []byte
	)

	err := r.pool.QueryRow(ctx, query, apiKey).Scan(
		&client.ID,
		&client.Name,
		&client.ApiKey,
		&client.IsActive,
		&client.CreatedAt,
		&lastUsedAt,
		&permissionsJSON,
		&metadataJSON,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get api client: %w", err)
	}

	if lastUsedAt.Valid {
		client.LastUsedAt = &lastUsedAt.Time
	}

	if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &client.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &client, nil
}

// UpdateClientLastUsed records when an API key was last seen
func (r *PostgresRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	query := `UPDATE api_clients SET last_used_at = NOW() WHERE api_key = $1`

	if _, err := r.pool.Exec(ctx, query, apiKey); err != nil {
		return fmt.Errorf("failed to update client last_used_at: %w", err)
	}

	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
