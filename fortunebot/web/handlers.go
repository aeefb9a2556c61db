package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const requestTimeout = 5 * time.Second

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
	Uptime   string `json:"uptime"`
}

type standingResponse struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Points      int64  `json:"points"`
	DragonMarks int64  `json:"dragon_marks"`
	Envelopes   int64  `json:"envelopes"`
}

type questResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	Bonus           string    `json:"bonus,omitempty"`
	RewardEnvelopes int       `json:"reward_envelopes"`
	CreatedAt       time.Time `json:"created_at"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "ok",
		Version:  s.version,
		Uptime:   time.Since(s.started).Round(time.Second).String(),
	}
	status := http.StatusOK
	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			slog.Error("Health check failed",
				slog.String("type", "db"),
				slog.Any("error", err),
			)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	return c.Status(status).JSON(APIResponse{
		Success:   status == http.StatusOK,
		Data:      resp,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", DefaultPageSize)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > MaxPageSize {
		return SendBadRequest(c, "limit must be between 1 and 100")
	}
	if offset < 0 {
		return SendBadRequest(c, "offset must not be negative")
	}

	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	standings, err := s.leaderboard.Top(ctx, limit, offset)
	if err != nil {
		return err
	}
	total, err := s.leaderboard.Count(ctx)
	if err != nil {
		return err
	}

	rows := make([]standingResponse, len(standings))
	for i, st := range standings {
		rows[i] = standingResponse{
			Rank:        st.Rank,
			UserID:      st.UserID,
			Points:      st.Points,
			DragonMarks: st.DragonMarks,
			Envelopes:   st.Envelopes,
		}
	}
	return SendPaginated(c, rows, newPagination(limit, offset, int64(total)))
}

func (s *Server) handleQuests(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	active, err := s.quests.ListActive(ctx, 0)
	if err != nil {
		return err
	}

	rows := make([]questResponse, len(active))
	for i, q := range active {
		rows[i] = questResponse{
			ID:              q.ID,
			Title:           q.Title,
			Body:            q.Body,
			Bonus:           q.BonusText,
			RewardEnvelopes: q.RewardEnvelopes,
			CreatedAt:       q.CreatedAt,
		}
	}
	return SendSuccess(c, rows)
}
