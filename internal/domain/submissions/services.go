package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redlantern/fortunebot/internal/domain/audit"
	"github.com/redlantern/fortunebot/internal/domain/errs"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/gateways/database/models"
)

const (
	DefaultHistorySize = 10

	// archiveTimeout bounds the proof download and upload after approval.
	archiveTimeout = 20 * time.Second
	// rehydrateGrace keeps Rehydrate away from submissions whose review
	// message is still being posted by Submit.
	rehydrateGrace = 2 * time.Minute
)

var (
	errDuplicate       = errs.New(errs.InvalidState, errs.CodeDuplicateSubmission, "you already have an open submission for this quest")
	errAlreadyReviewed = errs.New(errs.InvalidState, errs.CodeAlreadyReviewed, "this submission was already reviewed")
	errNotApproved     = errs.New(errs.InvalidState, errs.CodeNotApproved, "only approved submissions can be revoked")
	errAlreadyRevoked  = errs.New(errs.InvalidState, errs.CodeAlreadyRevoked, "this submission was already revoked")
)

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Submission, error)
	Approve(ctx context.Context, id int64, reviewerID string) (*AwardResult, error)
	Reject(ctx context.Context, id int64, reviewerID string) (*Submission, error)
	Revoke(ctx context.Context, id int64, actorID string) (*RevokeResult, error)
	Get(ctx context.Context, id int64) (*Submission, error)
	ListPending(ctx context.Context) ([]*Submission, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Submission, error)
	Rehydrate(ctx context.Context) ([]*Submission, error)
}

type Option func(*service)

// WithArchiver copies approved proofs with a.
func WithArchiver(a Archiver) Option {
	return func(s *service) { s.archiver = a }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	repository Repository
	tx         Transactor
	quests     Quests
	ledger     Ledger
	presenter  Presenter
	recorder   audit.Recorder
	archiver   Archiver
	now        func() time.Time
}

func NewService(repository Repository, tx Transactor, quests Quests, ledger Ledger, presenter Presenter, recorder audit.Recorder, opts ...Option) *service {
	s := &service{
		repository: repository,
		tx:         tx,
		quests:     quests,
		ledger:     ledger,
		presenter:  presenter,
		recorder:   recorder,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates a PENDING submission. Preconditions are checked in order and
// the first failure wins: quest exists, quest active, no open submission for
// the same quest, image proof.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (*Submission, error) {
	var quest *quests.Quest
	m := &models.Submission{
		UserID:    req.UserID,
		ProofURL:  req.ProofURL,
		Note:      strings.TrimSpace(req.Note),
		Status:    models.SubmissionPending,
		CreatedAt: s.now().UTC(),
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		// The cached quest may predate a close.
		if quest, err = s.quests.Reload(ctx, req.QuestID); err != nil {
			return err
		}
		if !quest.Active {
			return errs.Newf(errs.InvalidState, errs.CodeQuestClosed, "quest #%d is closed", quest.ID)
		}

		open, err := s.repository.HasOpen(ctx, req.UserID, quest.ID)
		if err != nil {
			return fmt.Errorf("failed to check open submissions: %w", err)
		}
		if open {
			return errDuplicate
		}

		if !req.ProofIsImage {
			return errs.New(errs.Validation, errs.CodeNotImage, "proof must be an image")
		}
		if strings.TrimSpace(req.ProofURL) == "" {
			return errs.New(errs.Validation, "", "proof is missing")
		}

		m.QuestID = quest.ID
		if err := s.repository.Create(ctx, m); err != nil {
			if isConflict(err) {
				return errDuplicate
			}
			return fmt.Errorf("failed to create submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sub := toSubmission(m)
	audit.Emit(ctx, s.recorder, audit.Event{
		Kind:         audit.KindSubmitted,
		ActorID:      sub.UserID,
		UserID:       sub.UserID,
		SubmissionID: sub.ID,
		QuestID:      sub.QuestID,
	})

	s.post(ctx, sub, quest)
	return sub, nil
}

// Approve credits the quest's reward and stamps it on the submission in the
// same transaction as the PENDING to APPROVED swap. The proof is archived
// after the commit.
func (s *service) Approve(ctx context.Context, id int64, reviewerID string) (*AwardResult, error) {
	var (
		sub     *Submission
		quest   *quests.Quest
		balance ledger.Balance
	)
	at := s.now().UTC()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if sub, err = s.load(ctx, id); err != nil {
			return err
		}
		if sub.Status != StatusPending {
			return errAlreadyReviewed
		}

		quest, err = s.quests.Get(ctx, sub.QuestID)
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				return errs.Wrap(errs.NotFound, errs.CodeQuestMissing,
					fmt.Sprintf("quest #%d of submission #%d no longer exists", sub.QuestID, id), err)
			}
			return err
		}

		awarded := quest.RewardEnvelopes
		ok, err := s.repository.Approve(ctx, id, reviewerID, awarded, at)
		if err != nil {
			return fmt.Errorf("failed to approve submission: %w", err)
		}
		if !ok {
			return errAlreadyReviewed
		}
		if err := s.ledger.CreditEnvelopes(ctx, sub.UserID, int64(awarded)); err != nil {
			return err
		}
		if balance, err = s.ledger.Balance(ctx, sub.UserID); err != nil {
			return err
		}

		sub.Status = StatusApproved
		sub.RewardEnvelopesAwarded = awarded
		sub.ReviewerID = reviewerID
		sub.ReviewedAt = at
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.update(ctx, sub)
	audit.Emit(ctx, s.recorder, audit.Event{
		Kind:         audit.KindApproved,
		ActorID:      reviewerID,
		UserID:       sub.UserID,
		SubmissionID: sub.ID,
		QuestID:      sub.QuestID,
		Amount:       int64(sub.RewardEnvelopesAwarded),
	})

	if s.archive(ctx, sub, quest) {
		s.update(ctx, sub)
	}
	return &AwardResult{
		Submission: sub,
		Quest:      quest,
		Awarded:    int64(sub.RewardEnvelopesAwarded),
		Balance:    balance,
	}, nil
}

func (s *service) Reject(ctx context.Context, id int64, reviewerID string) (*Submission, error) {
	var sub *Submission
	at := s.now().UTC()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if sub, err = s.load(ctx, id); err != nil {
			return err
		}
		if sub.Status != StatusPending {
			return errAlreadyReviewed
		}
		ok, err := s.repository.Reject(ctx, id, reviewerID, at)
		if err != nil {
			return fmt.Errorf("failed to reject submission: %w", err)
		}
		if !ok {
			return errAlreadyReviewed
		}
		sub.Status = StatusRejected
		sub.ReviewerID = reviewerID
		sub.ReviewedAt = at
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.update(ctx, sub)
	audit.Emit(ctx, s.recorder, audit.Event{
		Kind:         audit.KindRejected,
		ActorID:      reviewerID,
		UserID:       sub.UserID,
		SubmissionID: sub.ID,
		QuestID:      sub.QuestID,
	})
	return sub, nil
}

// Revoke marks an approved submission invalid and then tries to take back
// what approval credited. The transition commits even when the envelopes are
// already spent; the outcome tells the caller how much came back.
func (s *service) Revoke(ctx context.Context, id int64, actorID string) (*RevokeResult, error) {
	var sub *Submission
	at := s.now().UTC()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if sub, err = s.load(ctx, id); err != nil {
			return err
		}
		switch sub.Status {
		case StatusApproved:
		case StatusRevoked:
			return errAlreadyRevoked
		default:
			return errNotApproved
		}
		ok, err := s.repository.Revoke(ctx, id, actorID, at)
		if err != nil {
			return fmt.Errorf("failed to revoke submission: %w", err)
		}
		if !ok {
			return errAlreadyRevoked
		}
		sub.Status = StatusRevoked
		sub.RevokedBy = actorID
		sub.RevokedAt = at
		return nil
	})
	if err != nil {
		return nil, err
	}

	awarded := int64(sub.RewardEnvelopesAwarded)
	recovered, err := s.ledger.DebitUpTo(ctx, sub.UserID, awarded)
	if err != nil {
		slog.Error("Failed to recover envelopes of revoked submission",
			slog.String("type", "error"),
			slog.Int64("submission_id", sub.ID),
			slog.String("user_id", sub.UserID),
			slog.Any("error", err),
		)
		recovered = 0
	}

	outcome := FullyRecovered
	if recovered < awarded {
		outcome = PartiallyOrNotRecovered
	}

	s.update(ctx, sub)
	audit.Emit(ctx, s.recorder, audit.Event{
		Kind:         audit.KindRevoked,
		ActorID:      actorID,
		UserID:       sub.UserID,
		SubmissionID: sub.ID,
		QuestID:      sub.QuestID,
		Amount:       awarded,
		Recovered:    recovered,
	})

	return &RevokeResult{
		Submission: sub,
		Awarded:    awarded,
		Recovered:  recovered,
		Outcome:    outcome,
	}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Submission, error) {
	return s.load(ctx, id)
}

// ListPending returns every PENDING submission, oldest first.
func (s *service) ListPending(ctx context.Context) ([]*Submission, error) {
	list, err := s.repository.ListByStatus(ctx, models.SubmissionPending, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}
	return toSubmissions(list), nil
}

func (s *service) ListByUser(ctx context.Context, userID string, limit int) ([]*Submission, error) {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	list, err := s.repository.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return toSubmissions(list), nil
}

// Rehydrate re-posts the review message of pending submissions that never got
// one and returns all pending submissions, so the adapter can take over their
// controls after a restart.
func (s *service) Rehydrate(ctx context.Context) ([]*Submission, error) {
	pending, err := s.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-rehydrateGrace)
	for _, sub := range pending {
		if !sub.Origin.IsZero() || sub.CreatedAt.After(cutoff) {
			continue
		}
		quest, err := s.quests.Get(ctx, sub.QuestID)
		if err != nil {
			slog.Warn("Pending submission references an unknown quest",
				slog.String("type", "sys"),
				slog.Int64("submission_id", sub.ID),
				slog.Int64("quest_id", sub.QuestID),
				slog.Any("error", err),
			)
			continue
		}
		s.post(ctx, sub, quest)
	}

	slog.Info("Pending submissions rehydrated",
		slog.String("type", "sys"),
		slog.Int("count", len(pending)),
	)
	return pending, nil
}

func (s *service) load(ctx context.Context, id int64) (*Submission, error) {
	m, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.Newf(errs.NotFound, "", "submission #%d does not exist", id)
		}
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}
	return toSubmission(m), nil
}

// post publishes the review message and stores its reference. Failures leave
// the submission without an origin for Rehydrate to pick up.
func (s *service) post(ctx context.Context, sub *Submission, quest *quests.Quest) {
	if s.presenter == nil {
		return
	}
	ref, err := s.presenter.PostReview(ctx, sub, quest)
	if err != nil {
		slog.Error("Failed to post review message",
			slog.String("type", "error"),
			slog.Int64("submission_id", sub.ID),
			slog.Any("error", err),
		)
		return
	}
	if ref.IsZero() {
		return
	}
	if err := s.repository.SetOrigin(ctx, sub.ID, ref.ChannelID, ref.MessageID); err != nil {
		slog.Error("Failed to store review message reference",
			slog.String("type", "db"),
			slog.Int64("submission_id", sub.ID),
			slog.Any("error", err),
		)
		return
	}
	sub.Origin = ref
}

func (s *service) update(ctx context.Context, sub *Submission) {
	if s.presenter == nil || sub.Origin.IsZero() {
		return
	}
	if err := s.presenter.UpdateReview(ctx, sub); err != nil {
		slog.Error("Failed to update review message",
			slog.String("type", "error"),
			slog.Int64("submission_id", sub.ID),
			slog.String("status", string(sub.Status)),
			slog.Any("error", err),
		)
	}
}

// archive copies an approved proof and reports whether the submission now
// carries the archived URL. It runs on its own deadline, detached from the
// caller's.
func (s *service) archive(ctx context.Context, sub *Submission, quest *quests.Quest) bool {
	if s.archiver == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	url, err := s.archiver.Archive(ctx, sub, quest)
	if err != nil {
		slog.Warn("Failed to archive proof",
			slog.String("type", "sys"),
			slog.Int64("submission_id", sub.ID),
			slog.Any("error", err),
		)
		return false
	}
	if err := s.repository.SetArchivedProof(ctx, sub.ID, url); err != nil {
		slog.Error("Failed to store archived proof",
			slog.String("type", "db"),
			slog.Int64("submission_id", sub.ID),
			slog.Any("error", err),
		)
		return false
	}
	sub.ArchivedProofURL = url
	return true
}

// isConflict matches the repository's unique-violation error without
// importing the gateway.
func isConflict(err error) bool {
	var c interface{ Conflict() bool }
	return errors.As(err, &c) && c.Conflict()
}
