package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	dbtx "actionbot/db/tx"
	"actionbot/models"
)

type PostgresActionsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for actions table
var actionsColumns = []string{
	"id",
	"guild_id",
	"kind",
	"action_params",
	"trigger_id",
	"created_at",
	"updated_at",
}

func NewPostgresActionsRepository(db *sqlx.DB, schema string) *PostgresActionsRepository {
	return &PostgresActionsRepository{db: db, schema: schema}
}

func (r *PostgresActionsRepository) CreateAction(ctx context.Context, action *models.Action) error {
	returningStr := strings.Join(actionsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.actions (guild_id, kind, action_params, trigger_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s`, r.schema, returningStr)

	q := dbtx.GetTransactional(ctx, r.db)
	err := q.QueryRowxContext(ctx, query, action.GuildID, action.Kind, action.ActionParams, action.TriggerID).
		StructScan(action)
	if err != nil {
		return fmt.Errorf("failed to create action: %w", err)
	}

	return nil
}

func (r *PostgresActionsRepository) GetActionByID(
	ctx context.Context,
	id int64,
	guildID string,
) (mo.Option[*models.Action], error) {
	columnsStr := strings.Join(actionsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.actions
		WHERE id = $1 AND guild_id = $2`, columnsStr, r.schema)

	var action models.Action
	q := dbtx.GetTransactional(ctx, r.db)
	err := q.GetContext(ctx, &action, query, id, guildID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Action](), nil
		}
		return mo.None[*models.Action](), fmt.Errorf("failed to get action by ID: %w", err)
	}

	return mo.Some(&action), nil
}

func (r *PostgresActionsRepository) GetActionsByGuildID(
	ctx context.Context,
	guildID string,
) ([]*models.Action, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild ID cannot be empty")
	}

	columnsStr := strings.Join(actionsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.actions
		WHERE guild_id = $1
		ORDER BY id`, columnsStr, r.schema)

	var actions []*models.Action
	q := dbtx.GetTransactional(ctx, r.db)
	err := q.SelectContext(ctx, &actions, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actions by guild ID: %w", err)
	}

	return actions, nil
}

func (r *PostgresActionsRepository) DeleteAction(ctx context.Context, id int64, guildID string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s.actions WHERE id = $1 AND guild_id = $2`, r.schema)

	q := dbtx.GetTransactional(ctx, r.db)
	result, err := q.ExecContext(ctx, query, id, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to delete action: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}

// DeleteActionsByTriggerID removes every action bound to the trigger. It is
// called inside the trigger cascade-delete transaction.
func (r *PostgresActionsRepository) DeleteActionsByTriggerID(
	ctx context.Context,
	triggerID int64,
	guildID string,
) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s.actions WHERE trigger_id = $1 AND guild_id = $2`, r.schema)

	q := dbtx.GetTransactional(ctx, r.db)
	result, err := q.ExecContext(ctx, query, triggerID, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete actions by trigger ID: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected, nil
}
