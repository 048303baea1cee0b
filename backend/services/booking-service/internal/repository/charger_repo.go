package repository

import (
	"context"
	"database/sql"
	"errors"

	"voltshare/backend/services/booking-service/internal/models"
)

// ErrChargerNotFound indicates an unknown charger id.
var ErrChargerNotFound = errors.New("charger not found")

// ChargerRepository handles persistence of chargers.
type ChargerRepository struct {
	db *sql.DB
}

// NewChargerRepository returns repository.
func NewChargerRepository(db *sql.DB) *ChargerRepository {
	return &ChargerRepository{db: db}
}

const chargerColumns = `id, host_name, location, brand, type, available_date, duration, status, created_at, updated_at`

// Create persists a new charger.
func (r *ChargerRepository) Create(ctx context.Context, charger *models.Charger) error {
	const query = `
		INSERT INTO chargers (host_name, location, brand, type, available_date, duration, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		charger.HostName,
		charger.Location,
		charger.Brand,
		charger.Type,
		charger.AvailableDate,
		charger.Duration,
		charger.Status,
	).Scan(&charger.ID, &charger.CreatedAt, &charger.UpdatedAt)
}

// GetByID returns one charger.
func (r *ChargerRepository) GetByID(ctx context.Context, id int64) (*models.Charger, error) {
	const query = `
		SELECT ` + chargerColumns + `
		FROM chargers
		WHERE id = $1
	`
	charger, err := scanCharger(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChargerNotFound
	}
	return charger, err
}

// GetAll returns every charger ordered by id.
func (r *ChargerRepository) GetAll(ctx context.Context) ([]models.Charger, error) {
	const query = `
		SELECT ` + chargerColumns + `
		FROM chargers
		ORDER BY id
	`
	return r.queryChargers(ctx, query)
}

// GetByHost returns chargers owned by the given host.
func (r *ChargerRepository) GetByHost(ctx context.Context, hostName string) ([]models.Charger, error) {
	const query = `
		SELECT ` + chargerColumns + `
		FROM chargers
		WHERE host_name = $1
		ORDER BY id
	`
	return r.queryChargers(ctx, query, hostName)
}

// UpdateStatus transitions the charger availability state.
func (r *ChargerRepository) UpdateStatus(ctx context.Context, id int64, status models.ChargerStatus) error {
	const query = `
		UPDATE chargers
		SET status = $2,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrChargerNotFound
	}
	return nil
}

func (r *ChargerRepository) queryChargers(ctx context.Context, query string, args ...interface{}) ([]models.Charger, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chargers []models.Charger
	for rows.Next() {
		var c models.Charger
		if err := rows.Scan(
			&c.ID,
			&c.HostName,
			&c.Location,
			&c.Brand,
			&c.Type,
			&c.AvailableDate,
			&c.Duration,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		chargers = append(chargers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chargers, nil
}

func scanCharger(row *sql.Row) (*models.Charger, error) {
	var c models.Charger
	if err := row.Scan(
		&c.ID,
		&c.HostName,
		&c.Location,
		&c.Brand,
		&c.Type,
		&c.AvailableDate,
		&c.Duration,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
