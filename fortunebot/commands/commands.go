package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redlantern/fortunebot/internal/domain/errs"
)

// Commands is everything registered with Discord.
var Commands = []discord.ApplicationCommandCreate{
	Event,
	Staff,
}

const commandTimeout = 5 * time.Second

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// requireChannel restricts a command to one channel. An unset channel allows
// the command everywhere.
func requireChannel(want, got snowflake.ID) error {
	if want == 0 || want == got {
		return nil
	}
	return errs.Newf(errs.Validation, "", "please use this command in <#%s>", want)
}

// focusedText extracts what the user typed into an autocompleted option.
// Integer options arrive as either a JSON string or a number.
func focusedText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}

func isImage(a discord.Attachment) bool {
	if a.ContentType != nil {
		return strings.HasPrefix(*a.ContentType, "image/")
	}
	name := strings.ToLower(a.Filename)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func mention(id string) string {
	return fmt.Sprintf("<@%s>", id)
}
