package db

import (
	"context"

	"github.com/tgienger/double/internal/models"
)

// replaceMessages rewrites the transcript
func replaceMessages(ctx context.Context, q querier, msgs []models.Message) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return err
	}
	for i, m := range msgs {
		_, err := q.ExecContext(ctx, `
			INSERT INTO messages (seq, id, text, sender, timestamp, is_task) VALUES (?, ?, ?, ?, ?, ?)
		`, i, m.ID, m.Text, string(m.Sender), m.Timestamp, m.IsTask)
		if err != nil {
			return err
		}
	}
	return nil
}

// listMessages returns the transcript in order
func listMessages(ctx context.Context, q querier) ([]models.Message, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, text, sender, timestamp, is_task FROM messages ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var (
			m      models.Message
			sender string
		)
		if err := rows.Scan(&m.ID, &m.Text, &sender, &m.Timestamp, &m.IsTask); err != nil {
			return nil, err
		}
		m.Sender = models.Sender(sender)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// replaceAlarms rewrites the alarms table
func replaceAlarms(ctx context.Context, q querier, alarms []models.Alarm) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM alarms"); err != nil {
		return err
	}
	for i, a := range alarms {
		_, err := q.ExecContext(ctx, `
			INSERT INTO alarms (seq, id, message, time, active) VALUES (?, ?, ?, ?, ?)
		`, i, a.ID, a.Message, a.Time, a.Active)
		if err != nil {
			return err
		}
	}
	return nil
}

// listAlarms returns alarms in creation order
func listAlarms(ctx context.Context, q querier) ([]models.Alarm, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, message, time, active FROM alarms ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alarms := []models.Alarm{}
	for rows.Next() {
		var a models.Alarm
		if err := rows.Scan(&a.ID, &a.Message, &a.Time, &a.Active); err != nil {
			return nil, err
		}
		alarms = append(alarms, a)
	}
	return alarms, rows.Err()
}
