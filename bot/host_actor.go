package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"treasurer/service"

	"github.com/bwmarrin/discordgo"
)

// hostActor adapts a discordgo session to the service.HostActor interface.
// Snowflake IDs are int64 on the service side and strings on the wire.
type hostActor struct {
	session *discordgo.Session
}

// NewHostActor wraps a Discord session for use by the service layer.
func NewHostActor(session *discordgo.Session) service.HostActor {
	return &hostActor{session: session}
}

func snowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseSnowflake(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed snowflake %q: %w", id, err)
	}
	return n, nil
}

func (h *hostActor) AddRole(ctx context.Context, guildID, userID, roleID int64) error {
	if err := h.session.GuildMemberRoleAdd(snowflake(guildID), snowflake(userID), snowflake(roleID)); err != nil {
		return fmt.Errorf("failed to add role %d to user %d: %w", roleID, userID, err)
	}
	return nil
}

func (h *hostActor) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	if err := h.session.GuildMemberRoleRemove(snowflake(guildID), snowflake(userID), snowflake(roleID)); err != nil {
		return fmt.Errorf("failed to remove role %d from user %d: %w", roleID, userID, err)
	}
	return nil
}

func (h *hostActor) Timeout(ctx context.Context, guildID, userID int64, duration time.Duration) error {
	until := time.Now().Add(duration)
	if err := h.session.GuildMemberTimeout(snowflake(guildID), snowflake(userID), &until); err != nil {
		return fmt.Errorf("failed to timeout user %d: %w", userID, err)
	}
	return nil
}

// isUnknownMember reports whether Discord answered that the member or user
// does not exist, as opposed to the lookup failing
func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeUnknownMember ||
			restErr.Message.Code == discordgo.ErrCodeUnknownUser
	}
	return false
}

// LookupMember returns a nil member for users Discord does not know, so
// services can reject the target instead of surfacing a transport error.
func (h *hostActor) LookupMember(ctx context.Context, guildID, userID int64) (*service.Member, error) {
	member, err := h.session.GuildMember(snowflake(guildID), snowflake(userID))
	if isUnknownMember(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up member %d: %w", userID, err)
	}
	return h.toMember(guildID, member)
}

func (h *hostActor) toMember(guildID int64, member *discordgo.Member) (*service.Member, error) {
	userID, err := parseSnowflake(member.User.ID)
	if err != nil {
		return nil, err
	}
	roles := make([]int64, 0, len(member.Roles))
	for _, raw := range member.Roles {
		roleID, err := parseSnowflake(raw)
		if err != nil {
			return nil, err
		}
		roles = append(roles, roleID)
	}
	displayName := member.Nick
	if displayName == "" {
		displayName = member.User.Username
	}
	return &service.Member{
		UserID:      userID,
		GuildID:     guildID,
		DisplayName: displayName,
		Bot:         member.User.Bot,
		Roles:       roles,
	}, nil
}

func (h *hostActor) LookupRole(ctx context.Context, guildID, roleID int64) (*service.Role, error) {
	roles, err := h.session.GuildRoles(snowflake(guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to list roles for guild %d: %w", guildID, err)
	}
	want := snowflake(roleID)
	for _, role := range roles {
		if role.ID == want {
			return &service.Role{RoleID: roleID, GuildID: guildID, Name: role.Name}, nil
		}
	}
	return nil, nil
}

// RoleMembers pages through the guild member list and returns everyone
// holding the given role.
func (h *hostActor) RoleMembers(ctx context.Context, guildID, roleID int64) ([]*service.Member, error) {
	var result []*service.Member
	after := ""
	for {
		page, err := h.session.GuildMembers(snowflake(guildID), after, 1000)
		if err != nil {
			return nil, fmt.Errorf("failed to list members for guild %d: %w", guildID, err)
		}
		if len(page) == 0 {
			break
		}
		want := snowflake(roleID)
		for _, member := range page {
			for _, held := range member.Roles {
				if held != want {
					continue
				}
				converted, err := h.toMember(guildID, member)
				if err != nil {
					return nil, err
				}
				result = append(result, converted)
				break
			}
		}
		after = page[len(page)-1].User.ID
		if len(page) < 1000 {
			break
		}
	}
	return result, nil
}
