package commands

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redlantern/fortunebot/fortunebot/utils"
	"github.com/redlantern/fortunebot/internal/domain/draw"
	"github.com/redlantern/fortunebot/internal/domain/errs"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
)

func TestRequireChannel(t *testing.T) {
	tests := []struct {
		name    string
		want    snowflake.ID
		got     snowflake.ID
		wantErr bool
	}{
		{name: "unrestricted", want: 0, got: 5},
		{name: "right channel", want: 5, got: 5},
		{name: "wrong channel", want: 5, got: 6, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := requireChannel(tt.want, tt.got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("requireChannel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && errs.KindOf(err) != errs.Validation {
				t.Errorf("kind = %v", errs.KindOf(err))
			}
		})
	}
}

func TestFocusedText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: `"  lantern "`, want: "lantern"},
		{raw: `12`, want: "12"},
		{raw: ``, want: ""},
	}
	for _, tt := range tests {
		if got := focusedText(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("focusedText(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIsImage(t *testing.T) {
	png, pdf := "image/png", "application/pdf"
	tests := []struct {
		name string
		a    discord.Attachment
		want bool
	}{
		{name: "content type", a: discord.Attachment{ContentType: &png, Filename: "x"}, want: true},
		{name: "wrong content type", a: discord.Attachment{ContentType: &pdf, Filename: "x.png"}, want: false},
		{name: "extension fallback", a: discord.Attachment{Filename: "Proof.JPG"}, want: true},
		{name: "no hints", a: discord.Attachment{Filename: "proof.txt"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isImage(tt.a); got != tt.want {
				t.Errorf("isImage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuestChoices(t *testing.T) {
	var list []*quests.Quest
	for i := int64(1); i <= 30; i++ {
		list = append(list, &quests.Quest{ID: i, Title: strings.Repeat("龍", 120)})
	}

	choices := questChoices(list)
	if len(choices) != quests.DefaultSearchLimit {
		t.Fatalf("got %d choices, want %d", len(choices), quests.DefaultSearchLimit)
	}
	first := choices[0].(discord.AutocompleteChoiceInt)
	if first.Value != 1 || len([]rune(first.Name)) != 100 {
		t.Errorf("first choice = %d %q", first.Value, first.Name)
	}
}

func TestLeaderboardPages(t *testing.T) {
	tests := []struct{ total, want int }{
		{0, 1}, {1, 1}, {10, 1}, {11, 2}, {25, 3},
	}
	for _, tt := range tests {
		if got := leaderboardPages(tt.total); got != tt.want {
			t.Errorf("leaderboardPages(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestLeaderboardDescription(t *testing.T) {
	got := leaderboardDescription([]ledger.Standing{
		{Rank: 1, UserID: "a", Points: 10, DragonMarks: 2},
		{Rank: 2, UserID: "b", Points: 10, DragonMarks: 1},
		{Rank: 11, UserID: "c", Points: 1},
	})
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "🥇 <@a>") || !strings.HasPrefix(lines[1], "🥈 <@b>") || !strings.HasPrefix(lines[2], "`#11` <@c>") {
		t.Errorf("leaderboard = %q", got)
	}
	if leaderboardDescription(nil) == "" {
		t.Error("empty leaderboard renders nothing")
	}
}

func TestDrawEmbed(t *testing.T) {
	favor := draw.DefaultTable[3]
	embed := drawEmbed("42", &draw.Result{Tier: favor, Balance: ledger.Balance{Envelopes: 2, Points: 8, DragonMarks: 1}})
	if embed.Color != utils.GoldColor {
		t.Errorf("dragon tier color = %#x", embed.Color)
	}
	if !strings.Contains(embed.Description, favor.Flavor) {
		t.Errorf("description = %q", embed.Description)
	}
	if len(embed.Fields) != 3 {
		t.Errorf("got %d fields, want reward, mark and balance", len(embed.Fields))
	}

	small := drawEmbed("42", &draw.Result{Tier: draw.DefaultTable[0]})
	if small.Color != utils.FortuneColor || len(small.Fields) != 2 {
		t.Errorf("small tier embed = %+v", small)
	}
}

func TestBalanceEmbed(t *testing.T) {
	history := []*submissions.Submission{
		{ID: 3, QuestID: 1, Status: submissions.StatusApproved},
		{ID: 4, QuestID: 2, Status: submissions.StatusPending},
	}
	embed := balanceEmbed("42", ledger.Balance{Envelopes: 1}, history, 4*time.Second)
	if len(embed.Fields) != 2 {
		t.Fatalf("got %d fields", len(embed.Fields))
	}
	if embed.Fields[0].Value != "in 4s" {
		t.Errorf("cooldown field = %q", embed.Fields[0].Value)
	}
	if !strings.Contains(embed.Fields[1].Value, "✅ approved") || !strings.Contains(embed.Fields[1].Value, "🕒 pending") {
		t.Errorf("history field = %q", embed.Fields[1].Value)
	}

	bare := balanceEmbed("42", ledger.Balance{}, nil, 0)
	if len(bare.Fields) != 0 {
		t.Errorf("got %d fields, want none", len(bare.Fields))
	}
}

func TestRevokeMessage(t *testing.T) {
	full := revokeMessage(&submissions.RevokeResult{
		Submission: &submissions.Submission{ID: 9, UserID: "42"},
		Awarded:    3, Recovered: 3, Outcome: submissions.FullyRecovered,
	})
	if strings.Contains(full, "⚠️") {
		t.Errorf("full recovery warns: %q", full)
	}

	partial := revokeMessage(&submissions.RevokeResult{
		Submission: &submissions.Submission{ID: 9, UserID: "42"},
		Awarded:    3, Recovered: 1, Outcome: submissions.PartiallyOrNotRecovered,
	})
	if !strings.Contains(partial, "Recovered 1 of 3") || !strings.Contains(partial, "⚠️") {
		t.Errorf("partial recovery = %q", partial)
	}
}

func TestAdjustmentMessage(t *testing.T) {
	tests := []struct {
		adj  ledger.Adjustment
		want string
	}{
		{
			adj:  ledger.Adjustment{UserID: "42", Field: ledger.FieldPoints, Delta: 5, Before: 1, After: 6},
			want: "(+5)",
		},
		{
			adj:  ledger.Adjustment{UserID: "42", Field: ledger.FieldEnvelopes, Delta: -5, Before: 2, After: 0},
			want: "2 → 0 (-5)",
		},
	}
	for _, tt := range tests {
		if got := adjustmentMessage(tt.adj); !strings.Contains(got, tt.want) {
			t.Errorf("adjustmentMessage() = %q, want it to contain %q", got, tt.want)
		}
	}
}

func TestPendingDescription(t *testing.T) {
	got := pendingDescription([]*submissions.Submission{
		{ID: 1, UserID: "a", QuestID: 2, Origin: submissions.MessageRef{ChannelID: "77", MessageID: "88"}},
		{ID: 2, UserID: "b", QuestID: 2},
	})
	if !strings.Contains(got, "<#77>") || !strings.Contains(got, "not posted") {
		t.Errorf("pendingDescription() = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	s := "line one\nline two\nline three"
	if got := truncate(s, 100); got != s {
		t.Errorf("truncate() changed a short string: %q", got)
	}
	if got := truncate(s, 12); got != "line one\n…" {
		t.Errorf("truncate() = %q", got)
	}
}
