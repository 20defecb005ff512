package economy

import (
	"fmt"
	"strings"

	"pursebot/internal/command"
)

const leaderboardSize = 10

func topHandler(ctx *command.Context) (*command.Result, error) {
	entries, err := ctx.Economy.TopUsers(leaderboardSize)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return ok("The ledger is empty. Be the first: %sdaily", ctx.Prefix), nil
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var b strings.Builder
	b.WriteString("🏆 Richest users:\n")
	for i, e := range entries {
		marker := fmt.Sprintf("%2d.", i+1)
		if i < len(medals) {
			marker = medals[i]
		}
		fmt.Fprintf(&b, "%s %s — %d coins\n", marker, e.Username, e.Total)
	}
	return &command.Result{Success: true, Message: strings.TrimRight(b.String(), "\n")}, nil
}
