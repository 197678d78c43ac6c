package clients

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"PortfolioAI/app/chat"
)

const (
	askPrefix         = "!ask"
	discordMaxMessage = 2000
	discordTimeout    = time.Minute
)

var _ Interface = &DiscordClient{}

type DiscordClient struct {
	Client
	session   *discordgo.Session
	channelID string
	limiter   *RateLimiter
}

// NewDiscordClientFromConfig reads token and channel_id, falling back to
// DISCORD_TOKEN and DISCORD_CHANNEL_ID. An empty channel_id answers in every
// channel the bot can read.
func NewDiscordClientFromConfig(cfg map[string]string) (*DiscordClient, error) {
	token := cfg["token"]
	if token == "" {
		token = os.Getenv("DISCORD_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("discord token is empty")
	}
	channelID := cfg["channel_id"]
	if channelID == "" {
		channelID = os.Getenv("DISCORD_CHANNEL_ID")
	}
	rpm, err := intOption(cfg, "rate_per_minute", defaultRatePerMinute)
	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	dc := &DiscordClient{
		session:   session,
		channelID: channelID,
		limiter:   NewRateLimiter(rpm, defaultBurst),
	}

	session.AddHandler(dc.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	return dc, nil
}

func (c *DiscordClient) Subscribe(svc Service, health Pinger) error {
	c.bind(svc, health)
	return c.Open()
}

func (c *DiscordClient) Open() error {
	if err := c.session.Open(); err != nil {
		return err
	}
	log.Println("Discord client started. Listening for !ask messages...")
	return nil
}

func (c *DiscordClient) Close() error {
	return c.session.Close()
}

func (c *DiscordClient) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || s.State == nil || s.State.User == nil {
		return
	}
	if m.Author.ID == s.State.User.ID {
		return
	}
	if c.channelID != "" && m.ChannelID != c.channelID {
		return
	}
	question, ok := parseAsk(m.Content)
	if !ok {
		return
	}
	if question == "" {
		c.reply(m.ChannelID, "Usage: !ask <your question>")
		return
	}
	if !c.limiter.Allow(m.Author.ID) {
		c.reply(m.ChannelID, "Slow down a little, please try again in a minute.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), discordTimeout)
	defer cancel()
	c.reply(m.ChannelID, FormatDiscordReply(c.service.HandleQuery(ctx, question, chat.Options{})))
}

// parseAsk reports whether content is an !ask command and returns the
// question after the prefix.
func parseAsk(content string) (string, bool) {
	content = strings.TrimSpace(content)
	if content != askPrefix && !strings.HasPrefix(content, askPrefix+" ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(content, askPrefix)), true
}

func FormatDiscordReply(result chat.QueryResult) string {
	var msg string
	switch {
	case result.Success:
		msg = result.Answer
	case result.Suggestion != "":
		msg = result.Error + " " + result.Suggestion
	default:
		msg = result.Error
	}
	runes := []rune(msg)
	if len(runes) > discordMaxMessage {
		msg = string(runes[:discordMaxMessage-3]) + "..."
	}
	return msg
}

func (c *DiscordClient) reply(channelID, content string) {
	if err := c.SendMessage(channelID, content); err != nil {
		log.Printf("⚠️ Error replying on Discord: %v", err)
	}
}

func (c *DiscordClient) SendMessage(channelID, content string) error {
	if channelID == "" {
		return fmt.Errorf("channelID is empty")
	}
	if _, err := c.session.ChannelMessageSend(channelID, content); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
