package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

// Migrate creates app_state and the trigger that publishes every row change
// on the notify channel with the row id as payload.
func (r *DocumentPostgreSQL) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&models.DatasetDocument{}); err != nil {
		return fmt.Errorf("failed to migrate app_state: %w", err)
	}

	statements := []string{
		`CREATE OR REPLACE FUNCTION notify_app_state_change() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify(` + pq.QuoteLiteral(r.notifyChannel) + `, COALESCE(NEW.id, OLD.id)::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS app_state_notify ON app_state`,
		`CREATE TRIGGER app_state_notify AFTER INSERT OR UPDATE OR DELETE ON app_state
	FOR EACH ROW EXECUTE FUNCTION notify_app_state_change()`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to install change trigger: %w", err)
		}
	}

	r.logger.Info("Remote document schema ready", "channel", r.notifyChannel)
	return nil
}
