// Package economy wires the money-handling chat commands: wallet and
// bank queries, daily rewards, loans, transfers and the leaderboard.
package economy

import (
	"time"

	"pursebot/internal/command"
)

// Register adds every economy command to the registry.
func Register(reg *command.Registry) {
	reg.Register(&command.Command{
		Name:        "balance",
		Aliases:     []string{"bal"},
		Description: "Show your wallet, bank and loan totals",
		Category:    "💰 Economy",
		Handler:     balanceHandler,
	})
	reg.Register(&command.Command{
		Name:        "daily",
		Description: "Collect your daily reward",
		Category:    "💰 Economy",
		Handler:     dailyHandler,
	})
	reg.Register(&command.Command{
		Name:        "bank",
		Description: "Bank operations: bank <status|deposit|withdraw|loan|repay>",
		Category:    "💰 Economy",
		Handler:     bankHandler,
	})
	reg.Register(&command.Command{
		Name:        "deposit",
		Aliases:     []string{"dep"},
		Description: "Move coins from wallet to bank: deposit <amount|all>",
		Category:    "💰 Economy",
		Handler:     depositHandler,
	})
	reg.Register(&command.Command{
		Name:        "withdraw",
		Aliases:     []string{"with"},
		Description: "Move coins from bank to wallet: withdraw <amount|all>",
		Category:    "💰 Economy",
		Handler:     withdrawHandler,
	})
	reg.Register(&command.Command{
		Name:        "loan",
		Description: "Borrow coins from the bank: loan <amount>",
		Category:    "💰 Economy",
		Handler:     loanHandler,
	})
	reg.Register(&command.Command{
		Name:        "repay",
		Description: "Pay back your loan: repay <amount|all>",
		Category:    "💰 Economy",
		Handler:     repayHandler,
	})
	reg.Register(&command.Command{
		Name:        "send",
		Aliases:     []string{"pay"},
		Description: "Send coins to another user: send <user> <amount>",
		Category:    "💰 Economy",
		Cooldown:    10 * time.Second,
		Handler:     sendHandler,
	})
	reg.Register(&command.Command{
		Name:        "top",
		Aliases:     []string{"rich"},
		Description: "Show the richest users",
		Category:    "💰 Economy",
		Handler:     topHandler,
	})
	reg.Register(&command.Command{
		Name:        "history",
		Description: "Show your recent transactions",
		Category:    "💰 Economy",
		Handler:     historyHandler,
	})
}
