package economy

import (
	"fmt"
	"strconv"
	"strings"

	"pursebot/internal/command"
)

// parseAmount accepts a positive whole number of coins.
func parseAmount(arg string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("amount must be a positive number, got %q", arg)
	}
	return n, nil
}

// parseAmountOrAll is parseAmount plus the "all" shorthand, which resolves
// to the given pool.
func parseAmountOrAll(arg string, all int64) (int64, error) {
	if strings.EqualFold(strings.TrimSpace(arg), "all") {
		if all <= 0 {
			return 0, fmt.Errorf("you have nothing to move")
		}
		return all, nil
	}
	return parseAmount(arg)
}

func usage(ctx *command.Context, hint string) *command.Result {
	return &command.Result{Success: false, Message: fmt.Sprintf("usage: %s%s", ctx.Prefix, hint)}
}

func ok(format string, args ...any) *command.Result {
	return &command.Result{Success: true, Message: fmt.Sprintf(format, args...)}
}
