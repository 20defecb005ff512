package core

import (
	"fmt"
	"strconv"
	"strings"

	"pursebot/internal/command"
	"pursebot/internal/events"
	"pursebot/internal/storage"
	"pursebot/pkg/util"
)

const eventsPageSize = 15

func giveHandler(ctx *command.Context) (*command.Result, error) {
	return adjustHandler(ctx, "give", 1)
}

func takeHandler(ctx *command.Context) (*command.Result, error) {
	return adjustHandler(ctx, "take", -1)
}

func adjustHandler(ctx *command.Context, name string, sign int64) (*command.Result, error) {
	if len(ctx.Args) != 2 {
		return &command.Result{Success: false, Message: fmt.Sprintf("usage: %s%s <user> <amount>", ctx.Prefix, name)}, nil
	}
	target := strings.TrimPrefix(ctx.Args[0], "@")
	amount, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil || amount <= 0 {
		return &command.Result{Success: false, Message: fmt.Sprintf("amount must be a positive number, got %q", ctx.Args[1])}, nil
	}

	desc := fmt.Sprintf("admin %s by %s", name, storage.Key(ctx.User))
	balance, err := ctx.Economy.AdjustBalance(target, sign*amount, desc)
	if err != nil {
		return nil, err
	}
	if sign > 0 {
		return &command.Result{Success: true, Message: fmt.Sprintf("✅ Gave %d coins to %s (balance now %d)", amount, storage.Key(target), balance)}, nil
	}
	return &command.Result{Success: true, Message: fmt.Sprintf("✅ Took %d coins from %s (balance now %d)", amount, storage.Key(target), balance)}, nil
}

func eventsHandler(ctx *command.Context) (*command.Result, error) {
	if ctx.Events == nil {
		return &command.Result{Success: false, Message: "the activity log is not enabled"}, nil
	}

	var filter events.Filter
	if len(ctx.Args) > 0 {
		filter.Kind = ctx.Args[0]
	}
	if len(ctx.Args) > 1 {
		filter.User = strings.TrimPrefix(ctx.Args[1], "@")
	}
	filter.Limit = eventsPageSize

	records, total := ctx.Events.List(filter)
	if len(records) == 0 {
		return &command.Result{Success: true, Message: "No matching events"}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗒 Events (%d of %d)\n", len(records), total)
	for _, r := range records {
		when := util.FormatDateTpl(r.Datetime.UnixMilli(), "YYYY-MM-DD hh:mm:ss")
		fmt.Fprintf(&b, "%s  %-12s %-16s %6d  %s\n", when, r.Kind, r.User, r.Amount, r.Description)
	}
	return &command.Result{Success: true, Message: strings.TrimRight(b.String(), "\n")}, nil
}
