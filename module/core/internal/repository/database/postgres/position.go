package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/database"
)

var _ database.PositionRepository = (*PositionRepo)(nil)

const schema = `CREATE TABLE IF NOT EXISTS device_positions (
	id          BIGSERIAL PRIMARY KEY,
	device_id   TEXT NOT NULL,
	latitude    DOUBLE PRECISION NOT NULL,
	longitude   DOUBLE PRECISION NOT NULL,
	accuracy    DOUBLE PRECISION NOT NULL,
	speed       DOUBLE PRECISION,
	heading     DOUBLE PRECISION,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS device_positions_device_time ON device_positions (device_id, recorded_at)`

const selectColumns = `SELECT device_id, latitude, longitude, accuracy, speed, heading, recorded_at FROM device_positions`

type PositionRepo struct {
	db *sql.DB
}

func NewPositionRepo(db *sql.DB) *PositionRepo {
	return &PositionRepo{db: db}
}

// EnsureSchema creates the position table when it does not exist yet.
func (r *PositionRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PositionRepo) Insert(ctx context.Context, dp *domain.DevicePosition) error {
	p := dp.Position
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_positions (device_id, latitude, longitude, accuracy, speed, heading, recorded_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		dp.DeviceID, p.Lat, p.Lon, p.Accuracy, nullFloat(p.Speed), nullFloat(p.Heading), p.Timestamp,
	)
	return err
}

func (r *PositionRepo) GetLatest(ctx context.Context, deviceID string) (*domain.DevicePosition, error) {
	row := r.db.QueryRowContext(ctx,
		selectColumns+` WHERE device_id = $1 ORDER BY recorded_at DESC LIMIT 1`,
		deviceID,
	)

	dp, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoPosition
	}
	if err != nil {
		return nil, err
	}
	return dp, nil
}

func (r *PositionRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.DevicePosition, error) {
	rows, err := r.db.QueryContext(ctx,
		selectColumns+` WHERE device_id = $1 AND recorded_at >= $2 AND recorded_at <= $3 ORDER BY recorded_at ASC`,
		query.DeviceID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.DevicePosition
	for rows.Next() {
		dp, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *dp)
	}
	return results, rows.Err()
}

func (r *PositionRepo) ListDevices(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT device_id FROM device_positions ORDER BY device_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		results = append(results, id)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPosition(s scanner) (*domain.DevicePosition, error) {
	var (
		dp             domain.DevicePosition
		speed, heading sql.NullFloat64
	)
	p := &dp.Position
	if err := s.Scan(&dp.DeviceID, &p.Lat, &p.Lon, &p.Accuracy, &speed, &heading, &p.Timestamp); err != nil {
		return nil, err
	}
	if speed.Valid {
		p.Speed = &speed.Float64
	}
	if heading.Valid {
		p.Heading = &heading.Float64
	}
	return &dp, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
