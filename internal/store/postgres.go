package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS resumes (
	id          UUID PRIMARY KEY,
	user_id     TEXT NOT NULL,
	filename    TEXT NOT NULL DEFAULT '',
	raw_text    TEXT NOT NULL,
	parsed      JSONB NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS resumes_user_idx ON resumes (user_id, uploaded_at DESC);

CREATE TABLE IF NOT EXISTS skill_analyses (
	user_id             TEXT NOT NULL,
	target_role         TEXT NOT NULL,
	current_skills      JSONB NOT NULL,
	analysis            JSONB NOT NULL,
	job_readiness_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at          TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, target_role)
);

CREATE TABLE IF NOT EXISTS roadmaps (
	id                  UUID PRIMARY KEY,
	user_id             TEXT NOT NULL,
	target_role         TEXT NOT NULL,
	display_name        TEXT NOT NULL,
	roadmap             JSONB NOT NULL,
	total_weeks         INTEGER NOT NULL,
	current_week        INTEGER NOT NULL DEFAULT 1,
	job_readiness_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	skills_to_learn     JSONB NOT NULL,
	is_active           BOOLEAN NOT NULL DEFAULT FALSE,
	created_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS roadmaps_user_idx ON roadmaps (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS interview_sessions (
	id            UUID PRIMARY KEY,
	user_id       TEXT NOT NULL,
	target_role   TEXT NOT NULL,
	difficulty    TEXT NOT NULL,
	questions     JSONB NOT NULL,
	overall_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS interview_sessions_user_idx ON interview_sessions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS chat_messages (
	id         UUID PRIMARY KEY,
	user_id    TEXT NOT NULL,
	roadmap_id TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS chat_messages_conv_idx ON chat_messages (user_id, roadmap_id, created_at);
`

// PostgresStore persists records in PostgreSQL with JSONB payload columns
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *apperrors.Logger
}

// NewPostgresStore connects, verifies the connection and creates missing tables
func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig, logger *apperrors.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "invalid postgres DSN", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, storeFailure("connect to database", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storeFailure("ping database", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, storeFailure("create schema", err)
	}

	logger.Info("Connected to PostgreSQL", "max_conns", poolCfg.MaxConns)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func marshalJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal column: %w", err)
	}
	return b, nil
}

func (p *PostgresStore) SaveResume(ctx context.Context, r StoredResume) (StoredResume, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.UploadedAt.IsZero() {
		r.UploadedAt = time.Now().UTC()
	}
	parsed, err := marshalJSON(r.Parsed)
	if err != nil {
		return r, storeFailure("save resume", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO resumes (id, user_id, filename, raw_text, parsed, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.UserID, r.Filename, r.RawText, parsed, r.UploadedAt,
	)
	if err != nil {
		return r, storeFailure("save resume", err)
	}
	return r, nil
}

func (p *PostgresStore) LatestResume(ctx context.Context, userID string) (*StoredResume, error) {
	var r StoredResume
	var parsed []byte
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, filename, raw_text, parsed, uploaded_at
		 FROM resumes WHERE user_id = $1 ORDER BY uploaded_at DESC LIMIT 1`,
		userID,
	).Scan(&r.ID, &r.UserID, &r.Filename, &r.RawText, &parsed, &r.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("resume", userID)
	}
	if err != nil {
		return nil, storeFailure("load resume", err)
	}
	if err := json.Unmarshal(parsed, &r.Parsed); err != nil {
		return nil, storeFailure("decode resume", err)
	}
	return &r, nil
}

func (p *PostgresStore) SaveSkillAnalysis(ctx context.Context, a StoredSkillAnalysis) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	skills, err := marshalJSON(a.CurrentSkills)
	if err != nil {
		return storeFailure("save skill analysis", err)
	}
	analysis, err := marshalJSON(a.Analysis)
	if err != nil {
		return storeFailure("save skill analysis", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO skill_analyses (user_id, target_role, current_skills, analysis, job_readiness_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, target_role) DO UPDATE
		 SET current_skills = $3, analysis = $4, job_readiness_score = $5, created_at = $6`,
		a.UserID, a.TargetRole, skills, analysis, a.JobReadinessScore, a.CreatedAt,
	)
	if err != nil {
		return storeFailure("save skill analysis", err)
	}
	return nil
}

func (p *PostgresStore) LatestSkillAnalysis(ctx context.Context, userID string) (*StoredSkillAnalysis, error) {
	var a StoredSkillAnalysis
	var skills, analysis []byte
	err := p.pool.QueryRow(ctx,
		`SELECT user_id, target_role, current_skills, analysis, job_readiness_score, created_at
		 FROM skill_analyses WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID,
	).Scan(&a.UserID, &a.TargetRole, &skills, &analysis, &a.JobReadinessScore, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("skill analysis", userID)
	}
	if err != nil {
		return nil, storeFailure("load skill analysis", err)
	}
	if err := json.Unmarshal(skills, &a.CurrentSkills); err != nil {
		return nil, storeFailure("decode skill analysis", err)
	}
	if err := json.Unmarshal(analysis, &a.Analysis); err != nil {
		return nil, storeFailure("decode skill analysis", err)
	}
	return &a, nil
}

func (p *PostgresStore) SaveRoadmap(ctx context.Context, r StoredRoadmap) (StoredRoadmap, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	plan, err := marshalJSON(r.Roadmap)
	if err != nil {
		return r, storeFailure("save roadmap", err)
	}
	skills, err := marshalJSON(r.SkillsToLearn)
	if err != nil {
		return r, storeFailure("save roadmap", err)
	}

	err = pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if r.IsActive {
			if _, err := tx.Exec(ctx, `UPDATE roadmaps SET is_active = FALSE WHERE user_id = $1`, r.UserID); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO roadmaps (id, user_id, target_role, display_name, roadmap, total_weeks,
			                       current_week, job_readiness_score, skills_to_learn, is_active, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			r.ID, r.UserID, r.TargetRole, r.DisplayName, plan, r.TotalWeeks,
			r.CurrentWeek, r.JobReadinessScore, skills, r.IsActive, r.CreatedAt,
		)
		return err
	})
	if err != nil {
		return r, storeFailure("save roadmap", err)
	}
	return r, nil
}

const roadmapColumns = `id, user_id, target_role, display_name, roadmap, total_weeks,
	current_week, job_readiness_score, skills_to_learn, is_active, created_at`

func scanRoadmap(row pgx.Row) (StoredRoadmap, error) {
	var r StoredRoadmap
	var plan, skills []byte
	if err := row.Scan(&r.ID, &r.UserID, &r.TargetRole, &r.DisplayName, &plan, &r.TotalWeeks,
		&r.CurrentWeek, &r.JobReadinessScore, &skills, &r.IsActive, &r.CreatedAt); err != nil {
		return r, err
	}
	if err := json.Unmarshal(plan, &r.Roadmap); err != nil {
		return r, err
	}
	if err := json.Unmarshal(skills, &r.SkillsToLearn); err != nil {
		return r, err
	}
	return r, nil
}

func (p *PostgresStore) ListRoadmaps(ctx context.Context, userID string) ([]StoredRoadmap, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+roadmapColumns+` FROM roadmaps WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, storeFailure("list roadmaps", err)
	}
	defer rows.Close()

	var out []StoredRoadmap
	for rows.Next() {
		r, err := scanRoadmap(rows)
		if err != nil {
			return nil, storeFailure("scan roadmap", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("list roadmaps", err)
	}
	return out, nil
}

func (p *PostgresStore) GetRoadmap(ctx context.Context, userID, roadmapID string) (*StoredRoadmap, error) {
	id, err := uuid.Parse(roadmapID)
	if err != nil {
		return nil, notFound("roadmap", roadmapID)
	}
	r, err := scanRoadmap(p.pool.QueryRow(ctx,
		`SELECT `+roadmapColumns+` FROM roadmaps WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("roadmap", roadmapID)
	}
	if err != nil {
		return nil, storeFailure("load roadmap", err)
	}
	return &r, nil
}

func (p *PostgresStore) ActiveRoadmap(ctx context.Context, userID string) (*StoredRoadmap, error) {
	r, err := scanRoadmap(p.pool.QueryRow(ctx,
		`SELECT `+roadmapColumns+` FROM roadmaps WHERE user_id = $1 AND is_active
		 ORDER BY created_at DESC LIMIT 1`,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("active roadmap", userID)
	}
	if err != nil {
		return nil, storeFailure("load active roadmap", err)
	}
	return &r, nil
}

func (p *PostgresStore) RoadmapSnapshot(ctx context.Context, userID, roadmapID string) (*types.RoadmapSnapshot, error) {
	r, err := p.GetRoadmap(ctx, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	snap := r.Snapshot()
	return &snap, nil
}

func (p *PostgresStore) SaveSession(ctx context.Context, s InterviewSession) (InterviewSession, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	questions, err := marshalJSON(s.Questions)
	if err != nil {
		return s, storeFailure("save interview session", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO interview_sessions (id, user_id, target_role, difficulty, questions,
		                                 overall_score, status, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE
		 SET questions = $5, overall_score = $6, status = $7, completed_at = $9`,
		s.ID, s.UserID, s.TargetRole, s.Difficulty, questions,
		s.OverallScore, s.Status, s.CreatedAt, s.CompletedAt,
	)
	if err != nil {
		return s, storeFailure("save interview session", err)
	}
	return s, nil
}

const sessionColumns = `id, user_id, target_role, difficulty, questions, overall_score, status, created_at, completed_at`

func scanSession(row pgx.Row) (InterviewSession, error) {
	var s InterviewSession
	var questions []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.TargetRole, &s.Difficulty, &questions,
		&s.OverallScore, &s.Status, &s.CreatedAt, &s.CompletedAt); err != nil {
		return s, err
	}
	if err := json.Unmarshal(questions, &s.Questions); err != nil {
		return s, err
	}
	return s, nil
}

func (p *PostgresStore) GetSession(ctx context.Context, sessionID string) (*InterviewSession, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, notFound("interview session", sessionID)
	}
	s, err := scanSession(p.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM interview_sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("interview session", sessionID)
	}
	if err != nil {
		return nil, storeFailure("load interview session", err)
	}
	return &s, nil
}

func (p *PostgresStore) ListSessions(ctx context.Context, userID string, limit int) ([]InterviewSession, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM interview_sessions
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, storeFailure("list interview sessions", err)
	}
	defer rows.Close()

	var out []InterviewSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, storeFailure("scan interview session", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("list interview sessions", err)
	}
	return out, nil
}

func (p *PostgresStore) ExpireSessions(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE interview_sessions SET status = $1 WHERE status = $2 AND created_at < $3`,
		SessionExpired, SessionInProgress, cutoff,
	)
	if err != nil {
		return 0, storeFailure("expire interview sessions", err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *PostgresStore) AppendChat(ctx context.Context, userID, roadmapID string, turns ...types.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range turns {
		if t.Timestamp.IsZero() {
			t.Timestamp = time.Now().UTC()
		}
		batch.Queue(
			`INSERT INTO chat_messages (id, user_id, roadmap_id, role, message, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), userID, roadmapID, t.Role, t.Message, t.Timestamp,
		)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return storeFailure("append chat", err)
	}
	return nil
}

func (p *PostgresStore) RecentTurns(ctx context.Context, userID, roadmapID string, limit int) ([]types.ChatTurn, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := p.pool.Query(ctx,
		`SELECT role, message, created_at FROM (
		     SELECT role, message, created_at FROM chat_messages
		     WHERE user_id = $1 AND roadmap_id = $2
		     ORDER BY created_at DESC LIMIT $3
		 ) recent ORDER BY created_at ASC`,
		userID, roadmapID, limit,
	)
	if err != nil {
		return nil, storeFailure("load chat history", err)
	}
	turns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.ChatTurn, error) {
		var t types.ChatTurn
		err := row.Scan(&t.Role, &t.Message, &t.Timestamp)
		return t, err
	})
	if err != nil {
		return nil, storeFailure("load chat history", err)
	}
	return turns, nil
}

func (p *PostgresStore) ClearChat(ctx context.Context, userID, roadmapID string) (int, error) {
	query := `DELETE FROM chat_messages WHERE user_id = $1`
	args := []any{userID}
	if roadmapID != "" {
		query += ` AND roadmap_id = $2`
		args = append(args, roadmapID)
	}
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, storeFailure("clear chat", err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Driver: "postgres"}
	err := p.pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM resumes),
		        (SELECT COUNT(*) FROM skill_analyses),
		        (SELECT COUNT(*) FROM roadmaps),
		        (SELECT COUNT(*) FROM interview_sessions),
		        (SELECT COUNT(*) FROM chat_messages)`,
	).Scan(&stats.Resumes, &stats.SkillAnalyses, &stats.Roadmaps, &stats.Sessions, &stats.ChatTurns)
	if err != nil {
		return stats, storeFailure("collect stats", err)
	}
	return stats, nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return storeFailure("ping database", err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
