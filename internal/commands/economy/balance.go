package economy

import (
	"fmt"
	"strings"

	"pursebot/internal/command"
	"pursebot/pkg/util"
)

func balanceHandler(ctx *command.Context) (*command.Result, error) {
	rec, err := ctx.Economy.GetOrCreate(ctx.User)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💰 Wallet: %d coins | 🏦 Bank: %d coins | Total: %d coins", rec.Balance, rec.Bank, rec.Total())
	if rec.Loan > 0 {
		b.WriteString(fmt.Sprintf("\n💸 Outstanding loan: %d coins", rec.Loan))
		if rec.LoanDueAt != nil {
			b.WriteString(fmt.Sprintf(" (due %s)", util.FormatDateTpl(rec.LoanDueAt.UnixMilli(), "YYYY-MM-DD hh:mm")))
		}
	}
	return &command.Result{Success: true, Message: b.String()}, nil
}
