package services

import (
	"context"
	"errors"

	"farmfinance/backend/logger"
	"farmfinance/backend/models"
	"farmfinance/backend/store"
)

const recentFeedbackLimit = 5

type FeedbackService struct {
	store *store.Store
}

func NewFeedbackService(s *store.Store) *FeedbackService {
	return &FeedbackService{store: s}
}

// Submit records a new feedback message from the caller.
func (f *FeedbackService) Submit(ctx context.Context, caller models.Identity, in models.FeedbackInput) (models.Feedback, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.Feedback{}, err
	}

	fb := models.Feedback{
		UserID:   caller.UserID,
		Message:  in.Message,
		Category: in.Category,
		Status:   models.FeedbackNew,
	}
	if err := f.store.CreateFeedback(ctx, &fb); err != nil {
		return models.Feedback{}, err
	}

	log := logger.FromContext(ctx)
	log.Info().Str("user_id", caller.UserID).Str("category", fb.Category).Msg("Feedback submitted")
	return fb, nil
}

// Mine lists the caller's feedback, newest first.
func (f *FeedbackService) Mine(ctx context.Context, caller models.Identity) ([]models.Feedback, error) {
	return f.store.ListFeedbackByOwner(ctx, caller.UserID)
}

func (f *FeedbackService) All(ctx context.Context) ([]models.FeedbackWithUser, error) {
	return f.store.ListAllFeedback(ctx)
}

func (f *FeedbackService) Get(ctx context.Context, id string) (models.FeedbackWithUser, error) {
	fb, err := f.store.GetFeedback(ctx, id)
	if err != nil {
		return fb, feedbackLookup(err)
	}
	return fb, nil
}

// Triage sets the status and optional response of a feedback entry.
func (f *FeedbackService) Triage(ctx context.Context, admin models.Identity, id string, in models.FeedbackStatusUpdate) (models.FeedbackWithUser, error) {
	if err := in.Validate(); err != nil {
		return models.FeedbackWithUser{}, err
	}
	fb, err := f.store.GetFeedback(ctx, id)
	if err != nil {
		return fb, feedbackLookup(err)
	}

	in.ApplyTo(&fb.Feedback)
	if err := f.store.UpdateFeedback(ctx, &fb.Feedback); err != nil {
		return models.FeedbackWithUser{}, feedbackLookup(err)
	}

	log := logger.FromContext(ctx)
	log.Info().Stringer("admin", admin).Str("feedback_id", id).Str("status", fb.Status).Msg("Feedback triaged")
	return fb, nil
}

func (f *FeedbackService) Delete(ctx context.Context, id string) error {
	return feedbackLookup(f.store.DeleteFeedback(ctx, id))
}

func (f *FeedbackService) Stats(ctx context.Context) (models.FeedbackStats, error) {
	return f.store.FeedbackStats(ctx, recentFeedbackLimit)
}

func feedbackLookup(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NewError(models.ErrNotFound, "Feedback not found")
	}
	return err
}
