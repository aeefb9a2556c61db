package quests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redlantern/fortunebot/internal/domain/audit"
	"github.com/redlantern/fortunebot/internal/domain/errs"
	"github.com/redlantern/fortunebot/internal/gateways/database/models"
	"github.com/sahilm/fuzzy"
)

const (
	cacheSize          = 256
	DefaultSearchLimit = 25
)

type Service interface {
	Create(ctx context.Context, req NewQuest) (*Quest, error)
	Get(ctx context.Context, id int64) (*Quest, error)
	Reload(ctx context.Context, id int64) (*Quest, error)
	ListActive(ctx context.Context, limit int) ([]*Quest, error)
	Close(ctx context.Context, actorID string, id int64) (*Quest, bool, error)
	SetOrigin(ctx context.Context, id int64, channelID, messageID string) error
	Search(ctx context.Context, query string, limit int) ([]*Quest, error)
}

type service struct {
	repository Repository
	bounds     Bounds
	recorder   audit.Recorder
	cache      *lru.Cache
	now        func() time.Time
}

func NewService(repository Repository, bounds Bounds, recorder audit.Recorder) *service {
	if bounds.Min <= 0 || bounds.Max < bounds.Min {
		bounds = DefaultBounds
	}
	cache, _ := lru.New(cacheSize)
	return &service{
		repository: repository,
		bounds:     bounds,
		recorder:   recorder,
		cache:      cache,
		now:        time.Now,
	}
}

func (s *service) Create(ctx context.Context, req NewQuest) (*Quest, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errs.New(errs.Validation, "", "a quest needs a title")
	}
	if !s.bounds.Contains(req.RewardEnvelopes) {
		return nil, errs.Newf(errs.Validation, errs.CodeRewardRange,
			"reward must be between %d and %d envelopes", s.bounds.Min, s.bounds.Max)
	}

	m := &models.Quest{
		Title:           title,
		Body:            strings.TrimSpace(req.Body),
		BonusText:       strings.TrimSpace(req.Bonus),
		RewardEnvelopes: req.RewardEnvelopes,
		Active:          true,
		CreatedBy:       req.CreatedBy,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repository.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create quest: %w", err)
	}

	quest := toQuest(m)
	s.cache.Add(quest.ID, quest)

	audit.Emit(ctx, s.recorder, audit.Event{
		Kind:    audit.KindQuestPosted,
		ActorID: req.CreatedBy,
		QuestID: quest.ID,
		Amount:  int64(quest.RewardEnvelopes),
	})
	return copyOf(quest), nil
}

func (s *service) Get(ctx context.Context, id int64) (*Quest, error) {
	if cached, ok := s.cache.Get(id); ok {
		return copyOf(cached.(*Quest)), nil
	}
	return s.Reload(ctx, id)
}

// Reload reads the quest from the store, bypassing and then refreshing the
// cache. Use it where a stale active flag matters.
func (s *service) Reload(ctx context.Context, id int64) (*Quest, error) {
	m, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.Newf(errs.NotFound, "", "quest #%d does not exist", id)
		}
		return nil, fmt.Errorf("failed to fetch quest: %w", err)
	}

	quest := toQuest(m)
	s.cache.Add(id, quest)
	return copyOf(quest), nil
}

func (s *service) ListActive(ctx context.Context, limit int) ([]*Quest, error) {
	list, err := s.repository.ListActive(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	quests := make([]*Quest, 0, len(list))
	for _, m := range list {
		quests = append(quests, toQuest(m))
	}
	return quests, nil
}

// Close deactivates a quest. Closing a closed quest succeeds; the bool reports
// whether this call did the closing.
func (s *service) Close(ctx context.Context, actorID string, id int64) (*Quest, bool, error) {
	quest, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	at := s.now().UTC()
	s.cache.Remove(id)
	closed, err := s.repository.Close(ctx, id, at)
	s.cache.Remove(id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to close quest: %w", err)
	}
	if !closed {
		quest.Active = false
		return quest, false, nil
	}

	quest.Active = false
	quest.ClosedAt = at
	audit.Emit(ctx, s.recorder, audit.Event{
		Kind:    audit.KindQuestClosed,
		ActorID: actorID,
		QuestID: id,
	})
	return quest, true, nil
}

func (s *service) SetOrigin(ctx context.Context, id int64, channelID, messageID string) error {
	if err := s.repository.SetOrigin(ctx, id, channelID, messageID); err != nil {
		return fmt.Errorf("failed to store quest announcement: %w", err)
	}
	s.cache.Remove(id)
	return nil
}

// Search ranks active quests against query for autocomplete. An empty query
// returns the newest quests.
func (s *service) Search(ctx context.Context, query string, limit int) ([]*Quest, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	active, err := s.ListActive(ctx, 0)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return active[:min(limit, len(active))], nil
	}

	matches := fuzzy.FindFrom(query, searchItems(active))
	results := make([]*Quest, 0, min(limit, len(matches)))
	for _, match := range matches {
		if len(results) == limit {
			break
		}
		results = append(results, active[match.Index])
	}
	return results, nil
}

func copyOf(q *Quest) *Quest {
	c := *q
	return &c
}
