package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eduvance/portal/internal/apperror"
	"github.com/eduvance/portal/internal/config"
	"github.com/eduvance/portal/internal/httpclient"
)

// DefaultBaseURL is the Discord REST API root
const DefaultBaseURL = "https://discord.com/api/v10"

// guildResponse holds the fields read from GET /guilds/{id}?with_counts=true
type guildResponse struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	ApproximateMemberCount   int64  `json:"approximate_member_count"`
	ApproximatePresenceCount int64  `json:"approximate_presence_count"`
}

// Client fetches the guild member count and caches it
type Client struct {
	token   string
	guildID string
	ttl     time.Duration
	baseURL string
	client  *http.Client
	now     func() time.Time

	mu        sync.Mutex
	count     int64
	fetchedAt time.Time
}

// NewClient creates a Discord client from the service configuration
func NewClient(cfg config.DiscordConfig) *Client {
	return &Client{
		token:   cfg.BotToken,
		guildID: cfg.GuildID,
		ttl:     cfg.CacheTTL,
		baseURL: DefaultBaseURL,
		client:  httpclient.NewTraceClient("discord", config.GetTimeouts().HTTPClient),
		now:     time.Now,
	}
}

// SetBaseURL points the client at another API root
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// Configured reports whether a token and guild are set
func (c *Client) Configured() bool {
	return c.token != "" && c.guildID != ""
}

// MemberCount returns the approximate member count, served from cache while fresh
func (c *Client) MemberCount(ctx context.Context) (int64, error) {
	c.mu.Lock()
	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		count := c.count
		c.mu.Unlock()
		return count, nil
	}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Refresh fetches the member count from Discord and updates the cache
func (c *Client) Refresh(ctx context.Context) (int64, error) {
	if !c.Configured() {
		return 0, apperror.Unauthorized("Discord bot token or guild id not configured")
	}

	guild, err := c.fetchGuild(ctx)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.count = guild.ApproximateMemberCount
	c.fetchedAt = c.now()
	c.mu.Unlock()

	log.Debug().
		Str("guild", guild.Name).
		Int64("members", guild.ApproximateMemberCount).
		Msg("Discord member count refreshed")

	return guild.ApproximateMemberCount, nil
}

func (c *Client) fetchGuild(ctx context.Context) (*guildResponse, error) {
	url := fmt.Sprintf("%s/guilds/%s?with_counts=true", c.baseURL, c.guildID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.Upstream("Failed to build Discord request", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperror.Upstream("Failed to reach Discord", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperror.Unauthorized("Discord rejected the bot token")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperror.Upstream(
			fmt.Sprintf("Discord returned status %d", resp.StatusCode),
			fmt.Errorf("discord returned status %d: %s", resp.StatusCode, string(body)),
		)
	}

	var guild guildResponse
	if err := json.NewDecoder(resp.Body).Decode(&guild); err != nil {
		return nil, apperror.Upstream("Failed to decode Discord response", err)
	}
	return &guild, nil
}
