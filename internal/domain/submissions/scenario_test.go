package submissions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redlantern/fortunebot/internal/domain/audit"
	"github.com/redlantern/fortunebot/internal/domain/cooldown"
	"github.com/redlantern/fortunebot/internal/domain/draw"
	"github.com/redlantern/fortunebot/internal/domain/errs"
	"github.com/redlantern/fortunebot/internal/domain/ledger"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
	"github.com/redlantern/fortunebot/internal/gateways/database"
	"github.com/redlantern/fortunebot/internal/gateways/database/repositories"
)

type event struct {
	ledger      ledger.Service
	quests      quests.Service
	submissions submissions.Service
	daily       *cooldown.DailyClaims
	draw        draw.Service
}

func setupEvent(t *testing.T) *event {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.InitializeSchema(ctx); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	bunDB := db.BunDB()
	tx := repositories.NewTransactor(bunDB)

	ledgerSvc := ledger.NewService(repositories.NewEventUserRepository(bunDB), tx, audit.Nop{})
	questSvc := quests.NewService(repositories.NewQuestRepository(bunDB), quests.DefaultBounds, audit.Nop{})
	subSvc := submissions.NewService(repositories.NewSubmissionRepository(bunDB), tx, questSvc, ledgerSvc, nil, audit.Nop{})
	daily := cooldown.NewDailyClaims(repositories.NewDailyClaimRepository(bunDB), ledgerSvc, tx, audit.Nop{},
		cooldown.DailyConfig{}, clockwork.NewFakeClock())
	drawSvc, err := draw.NewService(ledgerSvc, tx, cooldown.NewLimiter(10*time.Second, clockwork.NewFakeClock()),
		draw.DefaultTable, nil, audit.Nop{})
	if err != nil {
		t.Fatal(err)
	}

	return &event{
		ledger:      ledgerSvc,
		quests:      questSvc,
		submissions: subSvc,
		daily:       daily,
		draw:        drawSvc,
	}
}

func submit(t *testing.T, e *event, userID string, questID int64) (*submissions.Submission, error) {
	t.Helper()
	return e.submissions.Submit(context.Background(), submissions.SubmitRequest{
		UserID:       userID,
		QuestID:      questID,
		ProofURL:     "https://cdn.example/proof.png",
		ProofIsImage: true,
	})
}

func TestScenario_approveThenRevoke(t *testing.T) {
	e := setupEvent(t)
	ctx := context.Background()

	quest, err := e.quests.Create(ctx, quests.NewQuest{Title: "Cook dumplings", Body: "Fold ten.", RewardEnvelopes: 3, CreatedBy: "staff"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sub, err := submit(t, e, "player", quest.ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := submit(t, e, "player", quest.ID); errs.CodeOf(err) != errs.CodeDuplicateSubmission {
		t.Fatalf("second Submit() error = %v, want duplicate", err)
	}

	award, err := e.submissions.Approve(ctx, sub.ID, "staff")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if award.Awarded != 3 || award.Balance.Envelopes != 3 {
		t.Fatalf("Approve() = %+v", award)
	}
	if _, err := e.submissions.Approve(ctx, sub.ID, "staff"); errs.CodeOf(err) != errs.CodeAlreadyReviewed {
		t.Errorf("second Approve() error = %v, want already reviewed", err)
	}
	if _, err := submit(t, e, "player", quest.ID); errs.CodeOf(err) != errs.CodeDuplicateSubmission {
		t.Errorf("Submit() while approved error = %v, want duplicate", err)
	}

	revoked, err := e.submissions.Revoke(ctx, sub.ID, "staff")
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked.Recovered != 3 || revoked.Outcome != submissions.FullyRecovered {
		t.Errorf("Revoke() = %+v", revoked)
	}
	if _, err := e.submissions.Revoke(ctx, sub.ID, "staff"); !errors.Is(err, errs.InvalidState) || errs.CodeOf(err) != errs.CodeAlreadyRevoked {
		t.Errorf("second Revoke() error = %v, want already revoked", err)
	}
	if _, err := e.submissions.Approve(ctx, sub.ID, "staff"); !errors.Is(err, errs.InvalidState) {
		t.Errorf("Approve() after revoke error = %v, want InvalidState", err)
	}

	got, err := e.submissions.Get(ctx, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != submissions.StatusRevoked || got.RewardEnvelopesAwarded != 3 {
		t.Errorf("stored submission = %+v", got)
	}

	balance, err := e.ledger.Balance(ctx, "player")
	if err != nil {
		t.Fatal(err)
	}
	if balance.Envelopes != 0 {
		t.Errorf("envelopes after revoke = %d, want 0", balance.Envelopes)
	}
}

func TestScenario_revokeAfterSpending(t *testing.T) {
	e := setupEvent(t)
	ctx := context.Background()

	quest, err := e.quests.Create(ctx, quests.NewQuest{Title: "Hang a lantern", RewardEnvelopes: 2, CreatedBy: "staff"})
	if err != nil {
		t.Fatal(err)
	}
	sub, err := submit(t, e, "player", quest.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.submissions.Approve(ctx, sub.ID, "staff"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.draw.Open(ctx, "player"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	revoked, err := e.submissions.Revoke(ctx, sub.ID, "staff")
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked.Recovered != 1 || revoked.Outcome != submissions.PartiallyOrNotRecovered {
		t.Errorf("Revoke() = %+v", revoked)
	}
	if revoked.Submission.Status != submissions.StatusRevoked {
		t.Errorf("Status = %s, want REVOKED", revoked.Submission.Status)
	}
}

func TestScenario_resubmitAfterReject(t *testing.T) {
	e := setupEvent(t)
	ctx := context.Background()

	quest, err := e.quests.Create(ctx, quests.NewQuest{Title: "Sweep the house", RewardEnvelopes: 1, CreatedBy: "staff"})
	if err != nil {
		t.Fatal(err)
	}
	first, err := submit(t, e, "player", quest.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.submissions.Reject(ctx, first.ID, "staff"); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if _, err := e.submissions.Revoke(ctx, first.ID, "staff"); errs.CodeOf(err) != errs.CodeNotApproved {
		t.Errorf("Revoke() of rejected error = %v, want not approved", err)
	}

	second, err := submit(t, e, "player", quest.ID)
	if err != nil {
		t.Fatalf("Submit() after reject error = %v", err)
	}
	if second.ID == first.ID {
		t.Error("resubmission reused the rejected id")
	}

	if _, _, err := e.quests.Close(ctx, "staff", quest.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := submit(t, e, "other", quest.ID); errs.CodeOf(err) != errs.CodeQuestClosed {
		t.Errorf("Submit() to closed quest error = %v, want quest closed", err)
	}

	pending, err := e.submissions.ListPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Errorf("ListPending() = %+v", pending)
	}
}

func TestScenario_dailyThenOpen(t *testing.T) {
	e := setupEvent(t)
	ctx := context.Background()

	if _, err := e.draw.Open(ctx, "player"); !errors.Is(err, errs.InsufficientBalance) {
		t.Fatalf("Open() with no envelopes error = %v, want InsufficientBalance", err)
	}
	before, err := e.ledger.Balance(ctx, "player")
	if err != nil {
		t.Fatal(err)
	}
	if before != (ledger.Balance{}) {
		t.Fatalf("refused draw changed the balance: %+v", before)
	}

	claim, err := e.daily.Claim(ctx, "player")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if claim.Balance.Envelopes != 1 {
		t.Fatalf("Claim() balance = %+v", claim.Balance)
	}
	if _, err := e.daily.Claim(ctx, "player"); !errors.Is(err, errs.RateLimited) {
		t.Errorf("second Claim() error = %v, want RateLimited", err)
	}

	result, err := e.draw.Open(ctx, "player")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	want := ledger.Balance{Envelopes: 0, Points: result.Tier.Points}
	if result.Tier.DragonMark {
		want.DragonMarks = 1
	}
	if result.Balance != want {
		t.Errorf("balance after draw = %+v, want %+v", result.Balance, want)
	}

	if _, err := e.draw.Open(ctx, "player"); !errors.Is(err, errs.RateLimited) {
		t.Errorf("Open() during cooldown error = %v, want RateLimited", err)
	}
}

func TestScenario_adjustClampsAtZero(t *testing.T) {
	e := setupEvent(t)
	ctx := context.Background()

	if err := e.ledger.CreditEnvelopes(ctx, "player", 2); err != nil {
		t.Fatal(err)
	}
	adj, err := e.ledger.Adjust(ctx, "staff", "player", ledger.FieldEnvelopes, -5)
	if err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}
	if adj.Before != 2 || adj.After != 0 {
		t.Errorf("Adjust() = %+v, want 2 -> 0", adj)
	}

	for _, field := range ledger.Fields {
		if _, err := e.ledger.Adjust(ctx, "staff", "player", field, -100); err != nil {
			t.Fatal(err)
		}
	}
	balance, err := e.ledger.Balance(ctx, "player")
	if err != nil {
		t.Fatal(err)
	}
	if balance != (ledger.Balance{}) {
		t.Errorf("balance = %+v, want all zero", balance)
	}
}
