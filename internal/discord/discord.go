// Package discord adapts the dispatch core to a Discord session: it feeds
// inbound messages into the dispatcher and delivers results back through
// rate-limited API calls.
package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"pursebot/internal/command"
	"pursebot/internal/config"
	"pursebot/pkg/retrylimit"
	"pursebot/pkg/util"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const sendTimeout = 15 * time.Second

// Bot owns the Discord session and the glue to the dispatcher.
type Bot struct {
	mu         sync.RWMutex
	session    *discordgo.Session
	open       bool
	dispatcher *command.Dispatcher
	cfg        *config.Config
	limiter    *retrylimit.AdaptiveLimiter
	log        zerolog.Logger
}

// New creates the bot. The session is not opened until Run. The dispatcher
// is attached separately because it consumes the bot as its Messenger.
func New(cfg *config.Config, log zerolog.Logger) *Bot {
	return &Bot{
		cfg:     cfg,
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		log:     log.With().Str("component", "discord").Logger(),
	}
}

// SetDispatcher attaches the dispatcher. Must be called before Run.
func (b *Bot) SetDispatcher(d *command.Dispatcher) {
	b.mu.Lock()
	b.dispatcher = d
	b.mu.Unlock()
}

// Run opens the session and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers
	dg.StateEnabled = true

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	b.mu.Lock()
	b.session = dg
	b.open = true
	b.mu.Unlock()

	if err := dg.Open(); err != nil {
		b.mu.Lock()
		b.open = false
		b.mu.Unlock()
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	defer func() {
		b.mu.Lock()
		b.open = false
		b.mu.Unlock()
		_ = dg.Close()
	}()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.log.Info().Str("user", s.State.User.Username).Msg("session ready")
	if len(b.cfg.Admins) > 0 {
		go b.Broadcast(b.cfg.Admins, fmt.Sprintf("✅ %s is online", s.State.User.Username))
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	b.mu.RLock()
	d := b.dispatcher
	b.mu.RUnlock()
	if d == nil {
		return
	}

	res := d.Dispatch(m.Author.Username, m.Content, time.Now())
	if res == nil || res.Message == "" {
		return
	}
	b.reply(m.ChannelID, res.Message)
}

func (b *Bot) reply(channelID, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	err := retrylimit.WithRetry(ctx, func() error {
		_, err := b.sessionRef().ChannelMessageSend(channelID, text)
		return wrapAPIError(err)
	}, b.limiter)
	if err != nil {
		b.log.Warn().Err(err).Str("channel", channelID).Msg("failed to deliver reply")
	}
}

func (b *Bot) sessionRef() *discordgo.Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session
}

// IsSessionActive reports whether the gateway connection is up.
func (b *Bot) IsSessionActive() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.open && b.session != nil
}

// ResolveProfile looks a username up in the state cache of every guild the
// bot is in.
func (b *Bot) ResolveProfile(username string) (bool, error) {
	s := b.sessionRef()
	if s == nil {
		return false, fmt.Errorf("session not open")
	}
	return b.findUser(s, username) != nil, nil
}

// SendText delivers a direct message to the named user.
func (b *Bot) SendText(username, text string) error {
	s := b.sessionRef()
	if s == nil {
		return fmt.Errorf("session not open")
	}
	user := b.findUser(s, username)
	if user == nil {
		return fmt.Errorf("user %s not found in any guild", username)
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return retrylimit.WithRetry(ctx, func() error {
		ch, err := s.UserChannelCreate(user.ID)
		if err != nil {
			return wrapAPIError(err)
		}
		_, err = s.ChannelMessageSend(ch.ID, text)
		return wrapAPIError(err)
	}, b.limiter)
}

// Broadcast sends text to several users concurrently. Individual failures
// are logged, not returned; the first error only aborts the remainder.
func (b *Bot) Broadcast(usernames []string, text string) {
	err := util.Parallel(usernames, 4, func(_ context.Context, name string) error {
		if err := b.SendText(name, text); err != nil {
			b.log.Warn().Err(err).Str("user", name).Msg("broadcast delivery failed")
		}
		return nil
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("broadcast aborted")
	}
}

func (b *Bot) findUser(s *discordgo.Session, username string) *discordgo.User {
	want := strings.ToLower(strings.TrimSpace(username))
	for _, guild := range s.State.Guilds {
		g, err := s.State.Guild(guild.ID)
		if err != nil {
			continue
		}
		for _, member := range g.Members {
			if member.User == nil {
				continue
			}
			if strings.ToLower(member.User.Username) == want {
				return member.User
			}
			if member.Nick != "" && strings.ToLower(member.Nick) == want {
				return member.User
			}
		}
	}
	return nil
}

// wrapAPIError translates discordgo REST errors into the retrylimit
// contract so 429s trigger the adaptive backoff.
func wrapAPIError(err error) error {
	if err == nil {
		return nil
	}
	if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Response != nil {
		return &apiError{code: restErr.Response.StatusCode, err: err}
	}
	return err
}

type apiError struct {
	code int
	err  error
}

func (e *apiError) Error() string   { return e.err.Error() }
func (e *apiError) Unwrap() error   { return e.err }
func (e *apiError) StatusCode() int { return e.code }
