package repositories

import (
	"context"
	"time"

	"github.com/redlantern/fortunebot/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	HasOpen(ctx context.Context, userID string, questID int64) (bool, error)
	Approve(ctx context.Context, id int64, reviewerID string, awarded int, at time.Time) (bool, error)
	Reject(ctx context.Context, id int64, reviewerID string, at time.Time) (bool, error)
	Revoke(ctx context.Context, id int64, actorID string, at time.Time) (bool, error)
	SetOrigin(ctx context.Context, id int64, channelID, messageID string) error
	SetArchivedProof(ctx context.Context, id int64, url string) error
	ListByStatus(ctx context.Context, status string, limit int) ([]*models.Submission, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Submission, error)
}

type submissionRepository struct {
	*BaseRepository
}

func NewSubmissionRepository(db *bun.DB) SubmissionRepository {
	return &submissionRepository{BaseRepository: NewBaseRepository(db)}
}

// Create inserts a submission. A second open submission for the same user and
// quest violates the partial unique index and comes back as a ConflictError.
func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).NewInsert().
		Model(submission).
		Returning("id").
		Exec(ctx)
	if isUniqueViolation(err) {
		return &ConflictError{
			Entity: "submission",
			Field:  "user_id, quest_id",
			Value:  []any{submission.UserID, submission.QuestID},
			Err:    err,
		}
	}
	return r.HandleError("create", "submission", err)
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	submission := new(models.Submission)
	err := r.conn(ctx).NewSelect().
		Model(submission).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "submission", id, err)
	}
	return submission, nil
}

// HasOpen reports whether the user has a PENDING or APPROVED submission for
// the quest.
func (r *submissionRepository) HasOpen(ctx context.Context, userID string, questID int64) (bool, error) {
	exists, err := r.conn(ctx).NewSelect().
		Model((*models.Submission)(nil)).
		Where("user_id = ?", userID).
		Where("quest_id = ?", questID).
		Where("status IN (?)", bun.In([]string{models.SubmissionPending, models.SubmissionApproved})).
		Exists(ctx)
	return exists, r.HandleError("has_open", "submission", err)
}

// Approve moves a PENDING submission to APPROVED, stamping the awarded amount.
// It reports false when the submission was no longer PENDING.
func (r *submissionRepository) Approve(ctx context.Context, id int64, reviewerID string, awarded int, at time.Time) (bool, error) {
	q := r.conn(ctx).NewUpdate().
		Model((*models.Submission)(nil)).
		Set("status = ?", models.SubmissionApproved).
		Set("reward_envelopes_awarded = ?", awarded).
		Set("reviewer_id = ?", reviewerID).
		Set("reviewed_at = ?", at.UTC())
	return r.transition(ctx, q, id, models.SubmissionPending)
}

func (r *submissionRepository) Reject(ctx context.Context, id int64, reviewerID string, at time.Time) (bool, error) {
	q := r.conn(ctx).NewUpdate().
		Model((*models.Submission)(nil)).
		Set("status = ?", models.SubmissionRejected).
		Set("reviewer_id = ?", reviewerID).
		Set("reviewed_at = ?", at.UTC())
	return r.transition(ctx, q, id, models.SubmissionPending)
}

func (r *submissionRepository) Revoke(ctx context.Context, id int64, actorID string, at time.Time) (bool, error) {
	q := r.conn(ctx).NewUpdate().
		Model((*models.Submission)(nil)).
		Set("status = ?", models.SubmissionRevoked).
		Set("revoked_by = ?", actorID).
		Set("revoked_at = ?", at.UTC())
	return r.transition(ctx, q, id, models.SubmissionApproved)
}

// transition runs q as a compare-and-swap on the current status.
func (r *submissionRepository) transition(ctx context.Context, q *bun.UpdateQuery, id int64, from string) (bool, error) {
	res, err := q.
		Where("id = ?", id).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("transition", "submission", id, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, r.HandleErrorWithID("transition", "submission", id, err)
	}
	return n == 1, nil
}

func (r *submissionRepository) SetOrigin(ctx context.Context, id int64, channelID, messageID string) error {
	_, err := r.conn(ctx).NewUpdate().
		Model((*models.Submission)(nil)).
		Set("channel_id = ?", channelID).
		Set("message_id = ?", messageID).
		Where("id = ?", id).
		Exec(ctx)
	return r.HandleErrorWithID("set_origin", "submission", id, err)
}

func (r *submissionRepository) SetArchivedProof(ctx context.Context, id int64, url string) error {
	_, err := r.conn(ctx).NewUpdate().
		Model((*models.Submission)(nil)).
		Set("archived_proof_url = ?", url).
		Where("id = ?", id).
		Exec(ctx)
	return r.HandleErrorWithID("set_archived_proof", "submission", id, err)
}

// ListByStatus returns submissions oldest first. A limit of 0 returns all.
func (r *submissionRepository) ListByStatus(ctx context.Context, status string, limit int) ([]*models.Submission, error) {
	var submissions []*models.Submission
	q := r.conn(ctx).NewSelect().
		Model(&submissions).
		Where("status = ?", status).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, r.HandleError("list_by_status", "submission", err)
	}
	return submissions, nil
}

// ListByUser returns the user's submissions, newest first.
func (r *submissionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Submission, error) {
	var submissions []*models.Submission
	q := r.conn(ctx).NewSelect().
		Model(&submissions).
		Where("user_id = ?", userID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, r.HandleError("list_by_user", "submission", err)
	}
	return submissions, nil
}
