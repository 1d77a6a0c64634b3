package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dishflow/shiftbot/internal/models"
)

// PostgresCodeLedger — коды доступа в Postgres (бэкенд для запуска без
// Google-таблицы). Семантика та же: первая подходящая строка выигрывает.
type PostgresCodeLedger struct {
	db           *sql.DB
	defaultPlace string
}

func NewPostgresCodeLedger(db *sql.DB, defaultPlace string) *PostgresCodeLedger {
	return &PostgresCodeLedger{db: db, defaultPlace: defaultPlace}
}

func (l *PostgresCodeLedger) scanCode(row *sql.Row) (*models.ActivationCode, error) {
	var c models.ActivationCode
	var role, status string
	err := row.Scan(&c.Code, &role, &c.PersonName, &c.IdentityID, &status, &c.Place)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения кода: %w", err)
	}
	c.Role = models.ParseRole(role)
	c.Status = models.CodeStatus(status)
	if c.Place == "" {
		c.Place = l.defaultPlace
	}
	return &c, nil
}

func (l *PostgresCodeLedger) FindByCode(ctx context.Context, code string) (*models.ActivationCode, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT code, role, person_name, identity_id, status, place
		FROM access_codes
		WHERE UPPER(code) = $1
		ORDER BY code
		LIMIT 1
	`, code)
	return l.scanCode(row)
}

func (l *PostgresCodeLedger) FindByIdentity(ctx context.Context, identityID int64) (*models.ActivationCode, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT code, role, person_name, identity_id, status, place
		FROM access_codes
		WHERE identity_id = $1
		ORDER BY code
		LIMIT 1
	`, identityID)
	return l.scanCode(row)
}

func (l *PostgresCodeLedger) Bind(ctx context.Context, code string, identityID int64, personName string) error {
	res, err := l.db.ExecContext(ctx, `
		UPDATE access_codes
		SET person_name = $1, identity_id = $2, status = $3
		WHERE UPPER(code) = $4
	`, personName, identityID, string(models.CodeStatusActivated), code)
	if err != nil {
		return fmt.Errorf("не удалось активировать код: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PostgresShiftLedger — завершённые смены в Postgres, только вставка.
type PostgresShiftLedger struct {
	db *sql.DB
}

func NewPostgresShiftLedger(db *sql.DB) *PostgresShiftLedger {
	return &PostgresShiftLedger{db: db}
}

func (l *PostgresShiftLedger) Append(ctx context.Context, rec *models.ShiftRecord) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO shifts (date, person_name, identity_id, role, start_time, end_time,
			duration_hours, entry_photo, exit_photo, place)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rec.Date, rec.PersonName, rec.IdentityID, string(rec.Role), rec.StartTime,
		rec.EndTime, rec.DurationHours, rec.EntryPhotoRef, rec.ExitPhotoRef, rec.Place)
	if err != nil {
		return fmt.Errorf("не удалось записать смену: %w", err)
	}
	return nil
}

func (l *PostgresShiftLedger) queryShifts(ctx context.Context, query string, args ...interface{}) ([]models.ShiftRecord, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения смен: %w", err)
	}
	defer rows.Close()

	var out []models.ShiftRecord
	for rows.Next() {
		var rec models.ShiftRecord
		var role string
		if err := rows.Scan(&rec.Date, &rec.PersonName, &rec.IdentityID, &role,
			&rec.StartTime, &rec.EndTime, &rec.DurationHours,
			&rec.EntryPhotoRef, &rec.ExitPhotoRef, &rec.Place); err != nil {
			return nil, err
		}
		rec.Role = models.ParseRole(role)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (l *PostgresShiftLedger) List(ctx context.Context, from, to time.Time) ([]models.ShiftRecord, error) {
	query := `
		SELECT date::text, person_name, identity_id, role, start_time, end_time,
			duration_hours, entry_photo, exit_photo, place
		FROM shifts
	`
	var args []interface{}
	switch {
	case !from.IsZero() && !to.IsZero():
		query += " WHERE date BETWEEN $1 AND $2"
		args = append(args, from.Format(models.DateLayout), to.Format(models.DateLayout))
	case !from.IsZero():
		query += " WHERE date >= $1"
		args = append(args, from.Format(models.DateLayout))
	case !to.IsZero():
		query += " WHERE date <= $1"
		args = append(args, to.Format(models.DateLayout))
	}
	query += " ORDER BY id"
	return l.queryShifts(ctx, query, args...)
}

func (l *PostgresShiftLedger) ListByIdentity(ctx context.Context, identityID int64, limit int) ([]models.ShiftRecord, error) {
	query := `
		SELECT date::text, person_name, identity_id, role, start_time, end_time,
			duration_hours, entry_photo, exit_photo, place
		FROM shifts
		WHERE identity_id = $1
		ORDER BY id DESC
	`
	args := []interface{}{identityID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	return l.queryShifts(ctx, query, args...)
}
