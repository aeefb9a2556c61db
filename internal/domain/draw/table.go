package draw

import (
	"math/rand/v2"

	"github.com/redlantern/fortunebot/internal/domain/errs"
)

type Tier struct {
	Name       string `toml:"name"`
	Emoji      string `toml:"emoji"`
	Weight     int    `toml:"weight"`
	Points     int64  `toml:"points"`
	DragonMark bool   `toml:"dragon_mark"`
	Flavor     string `toml:"flavor"`
}

func (t Tier) Label() string {
	if t.Emoji == "" {
		return t.Name
	}
	return t.Emoji + " " + t.Name
}

// Table is the list of reward tiers. A tier's chance is its weight over the
// total weight.
type Table []Tier

var DefaultTable = Table{
	{Name: "Small Blessing", Emoji: "🟢", Weight: 55, Points: 1, Flavor: "A small blessing drifts from the lantern lights…"},
	{Name: "Prosperity Blessing", Emoji: "🔵", Weight: 30, Points: 2, Flavor: "Prosperity follows your footsteps through the snow…"},
	{Name: "Fortune Blessing", Emoji: "🟣", Weight: 12, Points: 4, Flavor: "The Dragon's shadow passes over your fortress, fortune rises."},
	{Name: "Dragon's Favor", Emoji: "🟡", Weight: 3, Points: 8, DragonMark: true, Flavor: "The Red Dragon awakens and places its mark upon you…"},
}

func (t Table) Validate() error {
	if len(t) == 0 {
		return errs.New(errs.Validation, "", "reward table has no tiers")
	}
	for _, tier := range t {
		if tier.Name == "" {
			return errs.New(errs.Validation, "", "reward tier without a name")
		}
		if tier.Weight <= 0 {
			return errs.Newf(errs.Validation, "", "tier %q needs a positive weight", tier.Name)
		}
		if tier.Points < 0 {
			return errs.Newf(errs.Validation, "", "tier %q awards negative points", tier.Name)
		}
	}
	return nil
}

func (t Table) TotalWeight() int {
	total := 0
	for _, tier := range t {
		total += tier.Weight
	}
	return total
}

// Pick draws a tier uniformly over the weight space. A nil rng uses the
// runtime-seeded global source. The table must be valid.
func (t Table) Pick(rng *rand.Rand) Tier {
	var r int
	if rng == nil {
		r = rand.IntN(t.TotalWeight())
	} else {
		r = rng.IntN(t.TotalWeight())
	}

	for _, tier := range t {
		if r < tier.Weight {
			return tier
		}
		r -= tier.Weight
	}
	return t[len(t)-1]
}
