package economy

import (
	"fmt"
	"strings"

	"pursebot/internal/command"
	"pursebot/internal/storage"
)

func sendHandler(ctx *command.Context) (*command.Result, error) {
	if len(ctx.Args) != 2 {
		return usage(ctx, "send <user> <amount>"), nil
	}
	target := strings.TrimPrefix(ctx.Args[0], "@")
	amount, err := parseAmount(ctx.Args[1])
	if err != nil {
		return &command.Result{Success: false, Message: err.Error()}, nil
	}

	// Only hand coins to users the messaging layer can actually see, so a
	// typo doesn't mint a phantom account.
	if ctx.Messenger != nil && ctx.Messenger.IsSessionActive() {
		found, err := ctx.Messenger.ResolveProfile(target)
		if err != nil {
			ctx.Logger.Warn().Err(err).Str("target", target).Msg("profile lookup failed")
		} else if !found {
			return &command.Result{Success: false, Message: fmt.Sprintf("no such user: %s", target)}, nil
		}
	}

	if err := ctx.Economy.Transfer(ctx.User, target, amount); err != nil {
		return nil, err
	}

	if ctx.Messenger != nil && ctx.Messenger.IsSessionActive() {
		note := fmt.Sprintf("💌 %s sent you %d coins!", storage.Key(ctx.User), amount)
		if err := ctx.Messenger.SendText(target, note); err != nil {
			ctx.Logger.Warn().Err(err).Str("target", target).Msg("could not notify recipient")
		}
	}
	return ok("💌 Sent %d coins to %s", amount, storage.Key(target)), nil
}
