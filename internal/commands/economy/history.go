package economy

import (
	"fmt"
	"strings"

	"pursebot/internal/command"
	"pursebot/pkg/util"
)

const historySize = 10

func historyHandler(ctx *command.Context) (*command.Result, error) {
	txs, err := ctx.Economy.History(ctx.User, historySize)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return ok("No transactions yet. Try %sdaily to get started", ctx.Prefix), nil
	}

	var b strings.Builder
	b.WriteString("📜 Recent transactions:\n")
	for _, tx := range txs {
		when := util.FormatDateTpl(tx.Datetime.UnixMilli(), "YYYY-MM-DD hh:mm")
		fmt.Fprintf(&b, "%s  %-12s %6d  %s\n", when, tx.Type, tx.Amount, tx.Description)
	}
	return &command.Result{Success: true, Message: strings.TrimRight(b.String(), "\n")}, nil
}
