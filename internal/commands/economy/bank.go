package economy

import (
	"strings"

	"pursebot/internal/command"
)

// bankHandler fronts the bank operations as subcommands, so both
// "deposit 100" and "bank deposit 100" work.
func bankHandler(ctx *command.Context) (*command.Result, error) {
	if len(ctx.Args) == 0 {
		return usage(ctx, "bank <status|deposit|withdraw|loan|repay> ..."), nil
	}
	sub := *ctx
	sub.Args = ctx.Args[1:]
	switch strings.ToLower(ctx.Args[0]) {
	case "status":
		return balanceHandler(&sub)
	case "deposit", "dep":
		return depositHandler(&sub)
	case "withdraw", "with":
		return withdrawHandler(&sub)
	case "loan":
		return loanHandler(&sub)
	case "repay":
		return repayHandler(&sub)
	default:
		return usage(ctx, "bank <status|deposit|withdraw|loan|repay> ..."), nil
	}
}

func depositHandler(ctx *command.Context) (*command.Result, error) {
	if len(ctx.Args) != 1 {
		return usage(ctx, "deposit <amount|all>"), nil
	}
	rec, err := ctx.Economy.GetOrCreate(ctx.User)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountOrAll(ctx.Args[0], rec.Balance)
	if err != nil {
		return &command.Result{Success: false, Message: err.Error()}, nil
	}
	if err := ctx.Economy.Deposit(ctx.User, amount); err != nil {
		return nil, err
	}
	return ok("🏦 Deposited %d coins into your bank", amount), nil
}

func withdrawHandler(ctx *command.Context) (*command.Result, error) {
	if len(ctx.Args) != 1 {
		return usage(ctx, "withdraw <amount|all>"), nil
	}
	rec, err := ctx.Economy.GetOrCreate(ctx.User)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountOrAll(ctx.Args[0], rec.Bank)
	if err != nil {
		return &command.Result{Success: false, Message: err.Error()}, nil
	}
	if err := ctx.Economy.Withdraw(ctx.User, amount); err != nil {
		return nil, err
	}
	return ok("💰 Withdrew %d coins to your wallet", amount), nil
}

func loanHandler(ctx *command.Context) (*command.Result, error) {
	if len(ctx.Args) != 1 {
		return usage(ctx, "loan <amount>"), nil
	}
	amount, err := parseAmount(ctx.Args[0])
	if err != nil {
		return &command.Result{Success: false, Message: err.Error()}, nil
	}
	if err := ctx.Economy.TakeLoan(ctx.User, amount); err != nil {
		return nil, err
	}
	return ok("💸 Loan approved: %d coins added to your wallet. Don't forget to repay it!", amount), nil
}

func repayHandler(ctx *command.Context) (*command.Result, error) {
	if len(ctx.Args) != 1 {
		return usage(ctx, "repay <amount|all>"), nil
	}
	rec, err := ctx.Economy.GetOrCreate(ctx.User)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountOrAll(ctx.Args[0], rec.Loan)
	if err != nil {
		return &command.Result{Success: false, Message: err.Error()}, nil
	}
	paid, err := ctx.Economy.RepayLoan(ctx.User, amount)
	if err != nil {
		return nil, err
	}
	rec, err = ctx.Economy.GetOrCreate(ctx.User)
	if err != nil {
		return nil, err
	}
	if rec.Loan == 0 {
		return ok("✅ Paid %d coins. Your loan is fully repaid!", paid), nil
	}
	return ok("✅ Paid %d coins. Remaining loan: %d coins", paid, rec.Loan), nil
}
