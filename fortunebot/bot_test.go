package fortunebot

import (
	"errors"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

func TestBot_IsStaff(t *testing.T) {
	const staffRole = snowflake.ID(77)

	tests := []struct {
		name   string
		role   snowflake.ID
		member *discord.ResolvedMember
		want   bool
	}{
		{name: "has role", role: staffRole, member: &discord.ResolvedMember{Member: discord.Member{RoleIDs: []snowflake.ID{1, staffRole}}}, want: true},
		{name: "missing role", role: staffRole, member: &discord.ResolvedMember{Member: discord.Member{RoleIDs: []snowflake.ID{1}}}},
		{name: "no member", role: staffRole},
		{name: "no role configured", member: &discord.ResolvedMember{Member: discord.Member{RoleIDs: []snowflake.ID{0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Bot{}
			b.Cfg.Staff.RoleID = tt.role
			if got := b.IsStaff(tt.member); got != tt.want {
				t.Errorf("IsStaff() = %v, want %v", got, tt.want)
			}

			err := b.RequireStaff(tt.member)
			if tt.want != (err == nil) {
				t.Errorf("RequireStaff() = %v", err)
			}
			if err != nil && !errors.Is(err, ErrNotStaff) {
				t.Errorf("RequireStaff() = %v, want ErrNotStaff", err)
			}
		})
	}
}
