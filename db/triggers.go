package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	dbtx "actionbot/db/tx"
	"actionbot/models"
)

type PostgresTriggersRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for triggers table
var triggersColumns = []string{
	"id",
	"guild_id",
	"category",
	"activation_params",
	"created_at",
	"updated_at",
}

func NewPostgresTriggersRepository(db *sqlx.DB, schema string) *PostgresTriggersRepository {
	return &PostgresTriggersRepository{db: db, schema: schema}
}

func (r *PostgresTriggersRepository) CreateTrigger(ctx context.Context, trigger *models.Trigger) error {
	returningStr := strings.Join(triggersColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.triggers (guild_id, category, activation_params, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING %s`, r.schema, returningStr)

	q := dbtx.GetTransactional(ctx, r.db)
	err := q.QueryRowxContext(ctx, query, trigger.GuildID, trigger.Category, trigger.ActivationParams).
		StructScan(trigger)
	if err != nil {
		return fmt.Errorf("failed to create trigger: %w", err)
	}

	return nil
}

func (r *PostgresTriggersRepository) GetTriggerByID(
	ctx context.Context,
	id int64,
	guildID string,
) (mo.Option[*models.Trigger], error) {
	columnsStr := strings.Join(triggersColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.triggers
		WHERE id = $1 AND guild_id = $2`, columnsStr, r.schema)

	var trigger models.Trigger
	q := dbtx.GetTransactional(ctx, r.db)
	err := q.GetContext(ctx, &trigger, query, id, guildID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Trigger](), nil
		}
		return mo.None[*models.Trigger](), fmt.Errorf("failed to get trigger by ID: %w", err)
	}

	return mo.Some(&trigger), nil
}

func (r *PostgresTriggersRepository) GetTriggersByGuildID(
	ctx context.Context,
	guildID string,
) ([]*models.Trigger, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild ID cannot be empty")
	}

	columnsStr := strings.Join(triggersColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.triggers
		WHERE guild_id = $1
		ORDER BY id`, columnsStr, r.schema)

	var triggers []*models.Trigger
	q := dbtx.GetTransactional(ctx, r.db)
	err := q.SelectContext(ctx, &triggers, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get triggers by guild ID: %w", err)
	}

	return triggers, nil
}

// triggerActionJoinRow is the flat scan target for the trigger+actions join.
// Action columns are nullable because a trigger may have no actions yet.
type triggerActionJoinRow struct {
	TriggerID        int64                  `db:"trigger_id"`
	GuildID          string                 `db:"guild_id"`
	Category         models.TriggerCategory `db:"category"`
	ActivationParams models.ParamMap        `db:"activation_params"`
	CreatedAt        time.Time              `db:"created_at"`
	UpdatedAt        time.Time              `db:"updated_at"`

	ActionID        sql.NullInt64   `db:"action_id"`
	ActionGuildID   sql.NullString  `db:"action_guild_id"`
	ActionKind      sql.NullString  `db:"action_kind"`
	ActionParams    models.ParamMap `db:"action_params"`
	ActionCreatedAt sql.NullTime    `db:"action_created_at"`
	ActionUpdatedAt sql.NullTime    `db:"action_updated_at"`
}

// GetTriggersByCategory returns every trigger of the given category in the
// guild with its actions eagerly loaded. A single join query is used so the
// caller observes one consistent snapshot and no per-trigger round-trips are
// made.
func (r *PostgresTriggersRepository) GetTriggersByCategory(
	ctx context.Context,
	guildID string,
	category models.TriggerCategory,
) ([]*models.Trigger, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild ID cannot be empty")
	}

	query := fmt.Sprintf(`
		SELECT
			t.id AS trigger_id,
			t.guild_id,
			t.category,
			t.activation_params,
			t.created_at,
			t.updated_at,
			a.id AS action_id,
			a.guild_id AS action_guild_id,
			a.kind AS action_kind,
			a.action_params,
			a.created_at AS action_created_at,
			a.updated_at AS action_updated_at
		FROM %s.triggers t
		LEFT JOIN %s.actions a ON a.trigger_id = t.id
		WHERE t.guild_id = $1 AND t.category = $2
		ORDER BY t.id, a.id`, r.schema, r.schema)

	q := dbtx.GetTransactional(ctx, r.db)
	rows, err := q.QueryxContext(ctx, query, guildID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to get triggers by category: %w", err)
	}
	defer rows.Close()

	var triggers []*models.Trigger
	byID := make(map[int64]*models.Trigger)

	for rows.Next() {
		var row triggerActionJoinRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan trigger row: %w", err)
		}

		trigger, ok := byID[row.TriggerID]
		if !ok {
			trigger = &models.Trigger{
				ID:               row.TriggerID,
				GuildID:          row.GuildID,
				Category:         row.Category,
				ActivationParams: row.ActivationParams,
				CreatedAt:        row.CreatedAt,
				UpdatedAt:        row.UpdatedAt,
			}
			byID[row.TriggerID] = trigger
			triggers = append(triggers, trigger)
		}

		if row.ActionID.Valid {
			trigger.Actions = append(trigger.Actions, &models.Action{
				ID:           row.ActionID.Int64,
				GuildID:      row.ActionGuildID.String,
				Kind:         models.ActionKind(row.ActionKind.String),
				ActionParams: row.ActionParams,
				TriggerID:    row.TriggerID,
				CreatedAt:    row.ActionCreatedAt.Time,
				UpdatedAt:    row.ActionUpdatedAt.Time,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trigger rows: %w", err)
	}

	return triggers, nil
}

func (r *PostgresTriggersRepository) DeleteTrigger(ctx context.Context, id int64, guildID string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s.triggers WHERE id = $1 AND guild_id = $2`, r.schema)

	q := dbtx.GetTransactional(ctx, r.db)
	result, err := q.ExecContext(ctx, query, id, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to delete trigger: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}
