package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Generation status values.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusError   = "error"
)

// GenerationRecord represents one row in the generations table. Every
// generation request, from any surface (CLI, web, service), records here.
type GenerationRecord struct {
	ID             int64     // Auto-incremented primary key
	RequestID      string    // Unique identifier for tracing one request
	Modality       string    // "text-to-image", "image-to-image", "text-to-video"
	Prompt         string    // Input prompt
	NegativePrompt string    // Negative prompt, if any
	ModelID        string    // Model identifier used
	Width          int       // Output width in pixels
	Height         int       // Output height in pixels
	Steps          int       // Inference steps
	GuidanceScale  float64   // Classifier-free guidance scale
	FrameCount     int       // Frames generated (video only, 0 otherwise)
	Seed           int64     // Seed actually used
	Accelerator    string    // "cpu", "cuda", "metal"
	OutputPath     string    // Saved artifact path, empty on failure
	DurationMS     int64     // Wall-clock generation time in milliseconds
	Status         string    // StatusPending, StatusSuccess, StatusError
	ErrorMessage   string    // Error description when Status is error
	CreatedAt      time.Time // Timestamp when the record was created
}

// History provides CRUD operations for the generations table.
//
// Thread Safety: History is safe for concurrent use; the underlying
// connection pool serializes SQLite writes.
type History struct {
	conn *sql.DB
}

// NewHistory creates a History over an open connection. The caller keeps
// ownership of the connection.
func NewHistory(conn *sql.DB) *History {
	return &History{conn: conn}
}

// Insert records one generation and returns the inserted row ID.
func (h *History) Insert(ctx context.Context, rec GenerationRecord) (int64, error) {
	if h.conn == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	query := `
		INSERT INTO generations (
			request_id, modality, prompt, negative_prompt, model_id,
			width, height, steps, guidance_scale, frame_count, seed,
			accelerator, output_path, duration_ms, status, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := h.conn.ExecContext(ctx, query,
		rec.RequestID, rec.Modality, rec.Prompt, rec.NegativePrompt, rec.ModelID,
		rec.Width, rec.Height, rec.Steps, rec.GuidanceScale, rec.FrameCount, rec.Seed,
		rec.Accelerator, rec.OutputPath, rec.DurationMS, rec.Status, rec.ErrorMessage)
	if err != nil {
		return 0, fmt.Errorf("failed to insert generation record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// Recent retrieves the most recent generation records, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]GenerationRecord, error) {
	if h.conn == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, request_id, modality, prompt, negative_prompt, model_id,
		       width, height, steps, guidance_scale, frame_count, seed,
		       accelerator, output_path, duration_ms, status, error_message, created_at
		FROM generations
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := h.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		rec, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generations: %w", err)
	}
	return records, nil
}

// ByRequestID retrieves the record for one request. Returns sql.ErrNoRows
// when no record matches.
func (h *History) ByRequestID(ctx context.Context, requestID string) (GenerationRecord, error) {
	if h.conn == nil {
		return GenerationRecord{}, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT id, request_id, modality, prompt, negative_prompt, model_id,
		       width, height, steps, guidance_scale, frame_count, seed,
		       accelerator, output_path, duration_ms, status, error_message, created_at
		FROM generations
		WHERE request_id = ?`

	row := h.conn.QueryRowContext(ctx, query, requestID)
	return scanGeneration(row)
}

// CountByStatus returns the number of records per status value.
func (h *History) CountByStatus(ctx context.Context) (map[string]int64, error) {
	if h.conn == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	rows, err := h.conn.QueryContext(ctx, `SELECT status, COUNT(*) FROM generations GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count generations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// PruneOlderThan deletes records created before the cutoff and returns the
// number removed. Keeps the history table bounded on long-running installs.
func (h *History) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if h.conn == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	// Match the text format CURRENT_TIMESTAMP stores; comparison is lexical.
	result, err := h.conn.ExecContext(ctx,
		`DELETE FROM generations WHERE created_at < ?`, cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("failed to prune generations: %w", err)
	}
	return result.RowsAffected()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (GenerationRecord, error) {
	var rec GenerationRecord
	var createdAt string
	err := row.Scan(
		&rec.ID, &rec.RequestID, &rec.Modality, &rec.Prompt, &rec.NegativePrompt, &rec.ModelID,
		&rec.Width, &rec.Height, &rec.Steps, &rec.GuidanceScale, &rec.FrameCount, &rec.Seed,
		&rec.Accelerator, &rec.OutputPath, &rec.DurationMS, &rec.Status, &rec.ErrorMessage, &createdAt)
	if err != nil {
		return GenerationRecord{}, err
	}

	// SQLite stores the default timestamp as text.
	if t, perr := time.Parse("2006-01-02 15:04:05", createdAt); perr == nil {
		rec.CreatedAt = t
	} else if t, perr := time.Parse(time.RFC3339, createdAt); perr == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}
