package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/dayquote/internal/models"
	"github.com/julianstephens/dayquote/internal/storage"
)

func (s *Store) AddTrigger(t models.Trigger) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	if err := t.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(t.Data)
	if err != nil {
		return fmt.Errorf("encoding trigger data: %w", err)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	_, err = s.db.Exec(`
		INSERT INTO triggers (id, hour, minute, repeats, title, body, data, last_fired_day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Hour, t.Minute, t.Repeats, t.Title, t.Body, string(data), t.LastFiredDay, t.CreatedAt)
	return err
}

func (s *Store) GetAllTriggers() ([]models.Trigger, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}
	rows, err := s.db.Query(`
		SELECT id, hour, minute, repeats, title, body, data, last_fired_day, created_at
		FROM triggers
		ORDER BY hour, minute, created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triggers []models.Trigger
	for rows.Next() {
		var t models.Trigger
		var data []byte
		if err := rows.Scan(&t.ID, &t.Hour, &t.Minute, &t.Repeats, &t.Title, &t.Body, &data, &t.LastFiredDay, &t.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &t.Data); err != nil {
			return nil, fmt.Errorf("decoding data for trigger %s: %w", t.ID, err)
		}
		triggers = append(triggers, t)
	}
	return triggers, rows.Err()
}

func (s *Store) DeleteAllTriggers() (int, error) {
	if s.db == nil {
		return 0, storage.ErrNotLoaded
	}
	res, err := s.db.Exec("DELETE FROM triggers")
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) MarkTriggerFired(id, day string) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	res, err := s.db.Exec("UPDATE triggers SET last_fired_day = $1 WHERE id = $2", day, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrTriggerNotFound, id)
	}
	return nil
}
