package store

import (
	"context"
	"fmt"

	"farmfinance/backend/models"
)

const feedbackColumns = `id, user_id, message, category, status, response, is_resolved, created_at, updated_at`

func scanFeedback(row rowScanner) (models.Feedback, error) {
	var f models.Feedback
	err := row.Scan(&f.ID, &f.UserID, &f.Message, &f.Category, &f.Status, &f.Response, &f.IsResolved,
		&f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (s *Store) selectFeedback(ctx context.Context, query string, args ...interface{}) ([]models.Feedback, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	list := []models.Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

func (s *Store) withUsers(ctx context.Context, list []models.Feedback) ([]models.FeedbackWithUser, error) {
	ids := make([]string, 0, len(list))
	for _, f := range list {
		ids = append(ids, f.UserID)
	}
	refs, err := s.UserRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.FeedbackWithUser, 0, len(list))
	for _, f := range list {
		out = append(out, models.FeedbackWithUser{Feedback: f, User: refs[f.UserID]})
	}
	return out, nil
}

// CreateFeedback inserts f. IsResolved is synced from Status first.
func (s *Store) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	if f.ID == "" {
		f.ID = newID()
	}
	if f.Status == "" {
		f.Status = models.FeedbackNew
	}
	f.SyncResolved()
	now := s.timestamp()
	f.CreatedAt, f.UpdatedAt = now, now

	_, err := s.exec(ctx, `INSERT INTO feedback (`+feedbackColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.Message, f.Category, f.Status, f.Response, f.IsResolved, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

func (s *Store) UpdateFeedback(ctx context.Context, f *models.Feedback) error {
	f.SyncResolved()
	f.UpdatedAt = s.timestamp()

	res, err := s.exec(ctx, `UPDATE feedback SET message = ?, category = ?, status = ?, response = ?, is_resolved = ?,
		updated_at = ? WHERE id = ?`,
		f.Message, f.Category, f.Status, f.Response, f.IsResolved, f.UpdatedAt, f.ID)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	return requireAffected(res, "update feedback")
}

func (s *Store) GetFeedback(ctx context.Context, id string) (models.FeedbackWithUser, error) {
	f, err := scanFeedback(s.queryRow(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id))
	if err != nil {
		return models.FeedbackWithUser{}, notFound(err, "get feedback")
	}
	withUser, err := s.withUsers(ctx, []models.Feedback{f})
	if err != nil {
		return models.FeedbackWithUser{}, err
	}
	return withUser[0], nil
}

func (s *Store) DeleteFeedback(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM feedback WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return requireAffected(res, "delete feedback")
}

// ListFeedbackByOwner returns an owner's feedback, newest first.
func (s *Store) ListFeedbackByOwner(ctx context.Context, ownerID string) ([]models.Feedback, error) {
	return s.selectFeedback(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, ownerID)
}

// ListAllFeedback returns every entry, newest first, each with its author.
func (s *Store) ListAllFeedback(ctx context.Context) ([]models.FeedbackWithUser, error) {
	list, err := s.selectFeedback(ctx, `SELECT `+feedbackColumns+` FROM feedback ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return s.withUsers(ctx, list)
}

func (s *Store) groupCount(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.query(ctx, `SELECT `+column+`, COUNT(*) FROM feedback GROUP BY `+column)
	if err != nil {
		return nil, fmt.Errorf("count feedback by %s: %w", column, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// FeedbackStats summarises the queue. recent bounds RecentFeedback.
func (s *Store) FeedbackStats(ctx context.Context, recent int) (models.FeedbackStats, error) {
	var stats models.FeedbackStats
	var err error

	if stats.Total, err = s.count(ctx, `SELECT COUNT(*) FROM feedback`); err != nil {
		return stats, fmt.Errorf("count feedback: %w", err)
	}
	if stats.ByStatus, err = s.groupCount(ctx, "status"); err != nil {
		return stats, err
	}
	if stats.ByCategory, err = s.groupCount(ctx, "category"); err != nil {
		return stats, err
	}

	list, err := s.selectFeedback(ctx, `SELECT `+feedbackColumns+` FROM feedback
		ORDER BY created_at DESC, id DESC LIMIT ?`, recent)
	if err != nil {
		return stats, err
	}
	if stats.RecentFeedback, err = s.withUsers(ctx, list); err != nil {
		return stats, err
	}
	return stats, nil
}
