package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"startup-os-backend/internal/models"
)

// ErrNotFound is returned when a row does not exist or is not visible to the
// requesting user.
var ErrNotFound = errors.New("not found")

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an existing handle.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

// DB exposes the handle for the migrator.
func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

const startupColumns = `id, user_id, idea, target_users, business_type, geography, founder_type, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStartup(row rowScanner) (*models.Startup, error) {
	var s models.Startup
	err := row.Scan(
		&s.ID, &s.UserID, &s.Idea, &s.TargetUsers, &s.BusinessType,
		&s.Geography, &s.FounderType, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *DatabaseClient) CreateStartup(ctx context.Context, s *models.Startup) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = models.StatusEvaluating
	}

	created, err := scanStartup(d.db.QueryRowContext(ctx, `
		INSERT INTO startups (id, user_id, idea, target_users, business_type, geography, founder_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+startupColumns,
		s.ID, s.UserID, s.Idea, s.TargetUsers, s.BusinessType, s.Geography, s.FounderType, string(s.Status),
	))
	if err != nil {
		return fmt.Errorf("failed to create startup: %w", err)
	}

	*s = *created
	return nil
}

func (d *DatabaseClient) GetStartup(ctx context.Context, startupID, userID uuid.UUID) (*models.Startup, error) {
	s, err := scanStartup(d.db.QueryRowContext(ctx, `
		SELECT `+startupColumns+`
		FROM startups
		WHERE id = $1 AND user_id = $2
	`, startupID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get startup: %w", err)
	}
	return s, nil
}

func (d *DatabaseClient) ListStartups(ctx context.Context, userID uuid.UUID) ([]models.Startup, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+startupColumns+`
		FROM startups
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list startups: %w", err)
	}
	defer rows.Close()

	startups := []models.Startup{}
	for rows.Next() {
		s, err := scanStartup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan startup: %w", err)
		}
		startups = append(startups, *s)
	}

	return startups, rows.Err()
}

func (d *DatabaseClient) UpdateStartupStatus(ctx context.Context, startupID, userID uuid.UUID, status models.StartupStatus) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE startups
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, string(status), startupID, userID)
	if err != nil {
		return fmt.Errorf("failed to update startup status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update startup status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseClient) UpsertAIOutput(ctx context.Context, out *models.AIOutput) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO ai_outputs (startup_id, kind, payload, model, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (startup_id, kind) DO UPDATE
		SET payload = EXCLUDED.payload,
			model = EXCLUDED.model,
			updated_at = NOW()
		RETURNING updated_at
	`, out.StartupID, string(out.Kind), []byte(out.Payload), out.Model).Scan(&out.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert %s output: %w", out.Kind, err)
	}
	return nil
}

func (d *DatabaseClient) GetAIOutput(ctx context.Context, startupID uuid.UUID, kind models.ArtifactKind) (*models.AIOutput, error) {
	out := models.AIOutput{StartupID: startupID, Kind: kind}
	var payload []byte
	err := d.db.QueryRowContext(ctx, `
		SELECT payload, model, updated_at
		FROM ai_outputs
		WHERE startup_id = $1 AND kind = $2
	`, startupID, string(kind)).Scan(&payload, &out.Model, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s output: %w", kind, err)
	}
	out.Payload = payload
	return &out, nil
}

func (d *DatabaseClient) ListAIOutputs(ctx context.Context, startupID uuid.UUID) ([]models.AIOutput, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT kind, payload, model, updated_at
		FROM ai_outputs
		WHERE startup_id = $1
		ORDER BY kind
	`, startupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	defer rows.Close()

	var outputs []models.AIOutput
	for rows.Next() {
		out := models.AIOutput{StartupID: startupID}
		var payload []byte
		if err := rows.Scan(&out.Kind, &payload, &out.Model, &out.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan output: %w", err)
		}
		out.Payload = payload
		outputs = append(outputs, out)
	}

	return outputs, rows.Err()
}

const taskColumns = `id, startup_id, title, description, status, estimate_hours, skill_tag, position, created_at`

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID, &t.StartupID, &t.Title, &t.Description, &t.Status,
		&t.EstimateHours, &t.SkillTag, &t.Position, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ReplaceTasks swaps the startup's whole task list for tasks in one
// transaction. Positions follow slice order.
func (d *DatabaseClient) ReplaceTasks(ctx context.Context, startupID uuid.UUID, tasks []models.Task) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE startup_id = $1`, startupID); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}

	for i := range tasks {
		t := &tasks[i]
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		t.StartupID = startupID
		t.Position = i
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, startup_id, title, description, status, estimate_hours, skill_tag, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, t.ID, startupID, t.Title, t.Description, string(t.Status), t.EstimateHours, string(t.SkillTag), t.Position); err != nil {
			return fmt.Errorf("failed to insert task %q: %w", t.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tasks: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListTasks(ctx context.Context, startupID uuid.UUID) ([]models.Task, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE startup_id = $1
		ORDER BY position ASC, created_at ASC
	`, startupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}

	return tasks, rows.Err()
}

func (d *DatabaseClient) UpdateTask(ctx context.Context, startupID, taskID uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	var status, skill sql.NullString
	if patch.Status != nil {
		status = sql.NullString{String: string(*patch.Status), Valid: true}
	}
	if patch.SkillTag != nil {
		skill = sql.NullString{String: string(*patch.SkillTag), Valid: true}
	}

	t, err := scanTask(d.db.QueryRowContext(ctx, `
		UPDATE tasks
		SET title = COALESCE($3, title),
			description = COALESCE($4, description),
			status = COALESCE($5, status),
			estimate_hours = COALESCE($6, estimate_hours),
			skill_tag = COALESCE($7, skill_tag),
			position = COALESCE($8, position)
		WHERE id = $1 AND startup_id = $2
		RETURNING `+taskColumns,
		taskID, startupID, patch.Title, patch.Description, status, patch.EstimateHours, skill, patch.Position,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

func (d *DatabaseClient) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := d.db.QueryRowContext(ctx, `
		SELECT id, subscription_tier, subscription_started_at, subscription_expires_at, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, userID).Scan(
		&p.ID, &p.SubscriptionTier, &p.SubscriptionStartedAt, &p.SubscriptionExpiresAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// UpdateSubscription writes the tier and its window, creating the profile row
// when the user has none yet.
func (d *DatabaseClient) UpdateSubscription(ctx context.Context, userID uuid.UUID, tier models.SubscriptionTier, startedAt, expiresAt time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO profiles (id, subscription_tier, subscription_started_at, subscription_expires_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE
		SET subscription_tier = EXCLUDED.subscription_tier,
			subscription_started_at = EXCLUDED.subscription_started_at,
			subscription_expires_at = EXCLUDED.subscription_expires_at,
			updated_at = NOW()
	`, userID, string(tier), startedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to update subscription for user %s: %w", userID, err)
	}
	return nil
}

// EndSubscription moves the user to freemium with the window closed at
// endedAt. The recorded start of the last subscription is left as is.
func (d *DatabaseClient) EndSubscription(ctx context.Context, userID uuid.UUID, endedAt time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO profiles (id, subscription_tier, subscription_expires_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET subscription_tier = EXCLUDED.subscription_tier,
			subscription_expires_at = EXCLUDED.subscription_expires_at,
			updated_at = NOW()
	`, userID, string(models.TierFreemium), endedAt)
	if err != nil {
		return fmt.Errorf("failed to end subscription for user %s: %w", userID, err)
	}
	return nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
