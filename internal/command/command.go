// Package command is the dispatch core: the registry, the line parser, the
// cooldown gate and the dispatcher pipeline that ties them together. It
// knows nothing about any particular transport; adapters (Discord, console)
// feed it raw lines and forward the structured results.
package command

import (
	"time"

	"pursebot/internal/economy"
	"pursebot/internal/events"
	"pursebot/internal/games"

	"github.com/rs/zerolog"
)

// Permission levels for a command.
const (
	PermissionPublic = "public"
	PermissionAdmin  = "admin"
)

// Result is the outcome of one dispatch. Dispatcher-level failures are
// delivered this way too; nothing escapes as a raw error.
type Result struct {
	Success bool
	Message string
}

// HandlerFunc implements one command's behavior.
type HandlerFunc func(ctx *Context) (*Result, error)

// Command is a registered command descriptor. Name and Handler are required;
// everything else is optional.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Category    string
	Permission  string
	Cooldown    time.Duration
	Handler     HandlerFunc
}

// AdminOnly reports whether the command requires admin privileges.
func (c *Command) AdminOnly() bool {
	return c.Permission == PermissionAdmin
}

// Messenger is the capability the core consumes from the messaging
// collaborator. Implementations must apply their own timeout discipline;
// the core never blocks on them without one.
type Messenger interface {
	IsSessionActive() bool
	ResolveProfile(username string) (bool, error)
	SendText(username, text string) error
}

// Context is the capability object handed to every handler invocation.
type Context struct {
	Economy   *economy.Engine
	Games     *games.Dealer
	Messenger Messenger
	Events    *events.Recorder
	Registry  *Registry
	Emit      economy.EmitFunc
	Logger    zerolog.Logger

	Prefix     string
	User       string
	IsAdmin    bool
	Args       []string
	ReceivedAt time.Time
}
