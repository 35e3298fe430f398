package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tgienger/double/internal/models"
)

// Setting keys
const (
	settingVersion  = "session_version"
	settingUserName = "user_name"
	settingIsSetup  = "is_setup"
	settingMode     = "conversation_mode"
)

const sessionVersion = "1"

// Load reads the saved session. It returns nil when nothing was saved yet.
func (db *DB) Load(ctx context.Context) (*models.Session, error) {
	version, err := getSetting(ctx, db, settingVersion)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if version == "" {
		return nil, nil
	}

	s := &models.Session{}
	if s.UserName, err = getSetting(ctx, db, settingUserName); err != nil {
		return nil, fmt.Errorf("load user name: %w", err)
	}
	isSetup, err := getSetting(ctx, db, settingIsSetup)
	if err != nil {
		return nil, fmt.Errorf("load setup flag: %w", err)
	}
	s.IsSetup, _ = strconv.ParseBool(isSetup)
	mode, err := getSetting(ctx, db, settingMode)
	if err != nil {
		return nil, fmt.Errorf("load mode: %w", err)
	}
	s.Mode = models.Mode(mode)

	if s.ActiveTasks, err = listTasks(ctx, db, "active_seq"); err != nil {
		return nil, fmt.Errorf("load active tasks: %w", err)
	}
	if s.CompletedTasks, err = listTasks(ctx, db, "completed_seq"); err != nil {
		return nil, fmt.Errorf("load completed tasks: %w", err)
	}
	if s.AllTasks, err = listTasks(ctx, db, "all_seq"); err != nil {
		return nil, fmt.Errorf("load all tasks: %w", err)
	}
	if s.Transcript, err = listMessages(ctx, db); err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	if s.Alarms, err = listAlarms(ctx, db); err != nil {
		return nil, fmt.Errorf("load alarms: %w", err)
	}

	s.Normalize()
	return s, nil
}

// Save replaces the stored session in a single transaction
func (db *DB) Save(ctx context.Context, s *models.Session) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	settings := []struct{ key, value string }{
		{settingVersion, sessionVersion},
		{settingUserName, s.UserName},
		{settingIsSetup, strconv.FormatBool(s.IsSetup)},
		{settingMode, string(s.Mode)},
	}
	for _, kv := range settings {
		if err := setSetting(ctx, tx, kv.key, kv.value); err != nil {
			return fmt.Errorf("save %s: %w", kv.key, err)
		}
	}

	if err := replaceTasks(ctx, tx, s.ActiveTasks, s.CompletedTasks, s.AllTasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	if err := replaceMessages(ctx, tx, s.Transcript); err != nil {
		return fmt.Errorf("save messages: %w", err)
	}
	if err := replaceAlarms(ctx, tx, s.Alarms); err != nil {
		return fmt.Errorf("save alarms: %w", err)
	}

	return tx.Commit()
}

// Clear deletes the saved session. A later Load reports none.
func (db *DB) Clear(ctx context.Context) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"tasks", "messages", "alarms"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	_, err = tx.ExecContext(ctx, "DELETE FROM settings WHERE key IN (?, ?, ?, ?)",
		settingVersion, settingUserName, settingIsSetup, settingMode)
	if err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	return tx.Commit()
}
