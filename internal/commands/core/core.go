// Package core wires the housekeeping commands: help, ping, about, the
// activity log viewer and the admin-only balance adjustments.
package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pursebot/internal/command"
	"pursebot/internal/version"
)

// Register adds the core commands to the registry.
func Register(reg *command.Registry) {
	reg.Register(&command.Command{
		Name:        "help",
		Aliases:     []string{"commands"},
		Description: "Show a list of available commands",
		Category:    "Information",
		Handler:     helpHandler,
	})
	reg.Register(&command.Command{
		Name:        "ping",
		Description: "Pong!",
		Category:    "Information",
		Handler:     pingHandler,
	})
	reg.Register(&command.Command{
		Name:        "about",
		Description: "Show info about the bot",
		Category:    "Information",
		Handler:     aboutHandler,
	})
	reg.Register(&command.Command{
		Name:        "events",
		Description: "View the activity log: events [kind] [user]",
		Category:    "Administration",
		Permission:  command.PermissionAdmin,
		Handler:     eventsHandler,
	})
	reg.Register(&command.Command{
		Name:        "give",
		Description: "Grant coins to a user: give <user> <amount>",
		Category:    "Administration",
		Permission:  command.PermissionAdmin,
		Handler:     giveHandler,
	})
	reg.Register(&command.Command{
		Name:        "take",
		Description: "Remove coins from a user: take <user> <amount>",
		Category:    "Administration",
		Permission:  command.PermissionAdmin,
		Handler:     takeHandler,
	})
}

func helpHandler(ctx *command.Context) (*command.Result, error) {
	byCategory := map[string][]*command.Command{}
	for _, cmd := range ctx.Registry.List() {
		if cmd.AdminOnly() && !ctx.IsAdmin {
			continue
		}
		cat := cmd.Category
		if cat == "" {
			cat = "Other"
		}
		byCategory[cat] = append(byCategory[cat], cmd)
	}
	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	var b strings.Builder
	b.WriteString("📖 Available commands\n")
	for _, cat := range cats {
		fmt.Fprintf(&b, "\n%s\n", cat)
		for _, cmd := range byCategory[cat] {
			name := ctx.Prefix + cmd.Name
			if len(cmd.Aliases) > 0 {
				name += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			fmt.Fprintf(&b, "  %s — %s\n", name, cmd.Description)
		}
	}
	return &command.Result{Success: true, Message: strings.TrimRight(b.String(), "\n")}, nil
}

func pingHandler(ctx *command.Context) (*command.Result, error) {
	latency := time.Since(ctx.ReceivedAt)
	return &command.Result{
		Success: true,
		Message: fmt.Sprintf("🏓 Pong! Dispatch time: %dms", latency.Milliseconds()),
	}, nil
}

func aboutHandler(_ *command.Context) (*command.Result, error) {
	return &command.Result{
		Success: true,
		Message: fmt.Sprintf("ℹ️ %s %s (built %s) — a coin economy for your chat", version.AppName, version.AppVersion, version.BuildDate),
	}, nil
}
