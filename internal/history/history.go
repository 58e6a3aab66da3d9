package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"uni-meal-planner/internal/planner"
)

// ErrNotFound is returned when no stored plan matches the lookup.
var ErrNotFound = errors.New("plan not found")

// createdAtLayout keeps a fixed-width fraction so stored timestamps sort
// lexicographically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one stored planning run: the exact request that produced it and
// the generated plan. Replaying Request with a swap directive rebuilds the
// same day with one meal changed.
type Entry struct {
	ID        string
	ChatID    int64
	PlanDate  string
	Seed      int64
	Request   planner.PlanRequest
	Plan      planner.DailyPlan
	CreatedAt time.Time
}

// Store handles persistence of generated plans to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save records a generated plan. ChatID is zero for plans generated outside
// the bot.
func (s *Store) Save(chatID int64, req planner.PlanRequest, plan *planner.DailyPlan) (*Entry, error) {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}

	entry := &Entry{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		PlanDate:  req.Wake.Format("2006-01-02"),
		Seed:      req.Seed,
		Request:   req,
		Plan:      *plan,
		CreatedAt: time.Now().UTC(),
	}

	query := `
        INSERT INTO plans (id, chat_id, plan_date, seed, request_json, plan_json, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err = s.db.Exec(query,
		entry.ID, entry.ChatID, entry.PlanDate, entry.Seed,
		string(requestJSON), string(planJSON), entry.CreatedAt.Format(createdAtLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}

	return entry, nil
}

// Get returns one stored plan by ID.
func (s *Store) Get(id string) (*Entry, error) {
	query := `
        SELECT id, chat_id, plan_date, seed, request_json, plan_json, created_at
        FROM plans
        WHERE id = ?
    `
	return s.scanOne(s.db.QueryRow(query, id))
}

// Latest returns the most recent plan stored for a chat.
func (s *Store) Latest(chatID int64) (*Entry, error) {
	query := `
        SELECT id, chat_id, plan_date, seed, request_json, plan_json, created_at
        FROM plans
        WHERE chat_id = ?
        ORDER BY created_at DESC
        LIMIT 1
    `
	return s.scanOne(s.db.QueryRow(query, chatID))
}

// ListRecent returns up to limit plans for a chat, newest first.
func (s *Store) ListRecent(chatID int64, limit int) ([]*Entry, error) {
	query := `
        SELECT id, chat_id, plan_date, seed, request_json, plan_json, created_at
        FROM plans
        WHERE chat_id = ?
        ORDER BY created_at DESC
        LIMIT ?
    `
	rows, err := s.db.Query(query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Cleanup removes plans older than the specified number of days.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(createdAtLayout)
	res, err := s.db.Exec(`DELETE FROM plans WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old plans: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) scanOne(row *sql.Row) (*Entry, error) {
	entry, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func scanEntry(scan func(...any) error) (*Entry, error) {
	entry := &Entry{}
	var requestJSON, planJSON, createdAtStr string

	err := scan(&entry.ID, &entry.ChatID, &entry.PlanDate, &entry.Seed,
		&requestJSON, &planJSON, &createdAtStr)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(requestJSON), &entry.Request); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	if err := json.Unmarshal([]byte(planJSON), &entry.Plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return entry, nil
}
