package fortunebot

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/redlantern/fortunebot/internal/domain/draw"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/gateways/database"
)

const (
	DefaultDrawCooldown  = 10 * time.Second
	DefaultDailyCooldown = 24 * time.Hour
	DefaultHTTPAddr      = ":8080"
)

// LoadConfig reads the TOML file at path and overlays environment variables,
// including those from a .env file next to the working directory.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err = env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log       LogConfig       `toml:"log"`
	Bot       BotConfig       `toml:"bot"`
	DB        database.Config `toml:"db"`
	Channels  ChannelsConfig  `toml:"channels"`
	Staff     StaffConfig     `toml:"staff"`
	Cooldowns CooldownConfig  `toml:"cooldowns"`
	Rewards   RewardsConfig   `toml:"rewards"`
	HTTP      HTTPConfig      `toml:"http"`
	Spaces    SpacesConfig    `toml:"spaces"`
}

type BotConfig struct {
	DevGuilds    []snowflake.ID `toml:"dev_guilds"`
	Token        string         `toml:"token" env:"BOT_TOKEN"`
	SyncCommands bool           `toml:"sync_commands" env:"SYNC_COMMANDS"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level" env:"LOG_LEVEL"`
	Format    string     `toml:"format" env:"LOG_FORMAT"`
	AddSource bool       `toml:"add_source"`
}

// ChannelsConfig names where each kind of message goes. A zero ID disables the
// corresponding channel restriction or post.
type ChannelsConfig struct {
	Quests      snowflake.ID `toml:"quests"`
	Submissions snowflake.ID `toml:"submissions"`
	Envelopes   snowflake.ID `toml:"envelopes"`
	Ledger      snowflake.ID `toml:"ledger"`
	// Review is where review messages are posted. Defaults to Submissions.
	Review snowflake.ID `toml:"review"`
}

type StaffConfig struct {
	RoleID snowflake.ID `toml:"role_id"`
}

type CooldownConfig struct {
	Draw  Duration `toml:"draw" env:"DRAW_COOLDOWN"`
	Daily Duration `toml:"daily" env:"DAILY_COOLDOWN"`
	// Sweep is how often expired draw cooldowns are dropped.
	Sweep Duration `toml:"sweep"`
}

type RewardsConfig struct {
	MinQuestReward int        `toml:"min_quest_reward"`
	MaxQuestReward int        `toml:"max_quest_reward"`
	DailyEnvelopes int64      `toml:"daily_envelopes" env:"DAILY_ENVELOPES"`
	Tiers          draw.Table `toml:"tiers" env:"-"`
}

// Bounds returns the quest reward range.
func (r RewardsConfig) Bounds() quests.Bounds {
	return quests.Bounds{Min: r.MinQuestReward, Max: r.MaxQuestReward}
}

type HTTPConfig struct {
	Enabled bool   `toml:"enabled" env:"HTTP_ENABLED"`
	Addr    string `toml:"addr" env:"HTTP_ADDR"`
}

type SpacesConfig struct {
	Key      string `toml:"key" env:"SPACES_KEY"`
	Secret   string `toml:"secret" env:"SPACES_SECRET"`
	Region   string `toml:"region" env:"SPACES_REGION"`
	Bucket   string `toml:"bucket" env:"SPACES_BUCKET"`
	Root     string `toml:"root" env:"SPACES_ROOT"`
	Endpoint string `toml:"endpoint" env:"SPACES_ENDPOINT"`
}

// Enabled reports whether proof archiving is configured.
func (s SpacesConfig) Enabled() bool {
	return s.Bucket != "" && s.Key != "" && s.Secret != ""
}

func (c *Config) applyDefaults() {
	if c.Log.Format == "" {
		c.Log.Format = "pretty"
	}
	if c.DB.Driver == "" {
		c.DB.Driver = database.DriverPostgres
	}
	if c.Channels.Review == 0 {
		c.Channels.Review = c.Channels.Submissions
	}
	if c.Cooldowns.Draw.Duration == 0 {
		c.Cooldowns.Draw.Duration = DefaultDrawCooldown
	}
	if c.Cooldowns.Daily.Duration == 0 {
		c.Cooldowns.Daily.Duration = DefaultDailyCooldown
	}
	if c.Cooldowns.Sweep.Duration == 0 {
		c.Cooldowns.Sweep.Duration = time.Minute
	}
	if c.Rewards.MinQuestReward == 0 && c.Rewards.MaxQuestReward == 0 {
		c.Rewards.MinQuestReward = quests.DefaultBounds.Min
		c.Rewards.MaxQuestReward = quests.DefaultBounds.Max
	}
	if c.Rewards.DailyEnvelopes == 0 {
		c.Rewards.DailyEnvelopes = 1
	}
	if len(c.Rewards.Tiers) == 0 {
		c.Rewards.Tiers = draw.DefaultTable
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
}

func (c *Config) Validate() error {
	var problems []error
	if c.Bot.Token == "" {
		problems = append(problems, errors.New("bot.token is required"))
	}
	switch c.Log.Format {
	case "pretty", "text", "json":
	default:
		problems = append(problems, fmt.Errorf("log.format %q is not one of pretty, text, json", c.Log.Format))
	}
	if c.Rewards.MinQuestReward < 1 || c.Rewards.MaxQuestReward < c.Rewards.MinQuestReward {
		problems = append(problems, fmt.Errorf("rewards: invalid quest reward range [%d, %d]",
			c.Rewards.MinQuestReward, c.Rewards.MaxQuestReward))
	}
	if c.Rewards.DailyEnvelopes < 0 {
		problems = append(problems, errors.New("rewards.daily_envelopes must not be negative"))
	}
	if err := c.Rewards.Tiers.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("rewards.tiers: %w", err))
	}
	if c.Cooldowns.Draw.Duration < 0 || c.Cooldowns.Daily.Duration < 0 {
		problems = append(problems, errors.New("cooldowns must not be negative"))
	}
	return errors.Join(problems...)
}

// Duration is a time.Duration written as "10s" or "24h" in TOML and env.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
