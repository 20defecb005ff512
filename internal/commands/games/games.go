// Package games wires the gambling commands. Wagers are debited and
// credited through the economy engine so every outcome lands in the
// transaction history.
package games

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pursebot/internal/command"
)

// Register adds the game commands to the registry.
func Register(reg *command.Registry) {
	reg.Register(&command.Command{
		Name:        "flip",
		Aliases:     []string{"coinflip"},
		Description: "Flip a coin, double or nothing: flip <amount|all>",
		Category:    "🎲 Games",
		Cooldown:    5 * time.Second,
		Handler:     flipHandler,
	})
	reg.Register(&command.Command{
		Name:        "work",
		Description: "Do an honest shift for some coins",
		Category:    "🎲 Games",
		Cooldown:    time.Minute,
		Handler:     workHandler,
	})
	reg.Register(&command.Command{
		Name:        "slots",
		Description: "Spin the slot machine: slots <amount>",
		Category:    "🎲 Games",
		Cooldown:    10 * time.Second,
		Handler:     slotsHandler,
	})
}

func flipHandler(ctx *command.Context) (*command.Result, error) {
	if len(ctx.Args) != 1 {
		return fail("usage: %sflip <amount|all>", ctx.Prefix), nil
	}
	rec, err := ctx.Economy.GetOrCreate(ctx.User)
	if err != nil {
		return nil, err
	}
	wager, res := parseWager(ctx.Args[0], rec.Balance)
	if res != nil {
		return res, nil
	}

	out := ctx.Games.Flip(wager)
	balance, err := ctx.Economy.AdjustBalance(ctx.User, out.Delta, "coin flip")
	if err != nil {
		return nil, err
	}
	if out.Won {
		return success("🪙 Heads! You won %d coins. Balance: %d coins", wager, balance), nil
	}
	return success("🪙 Tails! You lost %d coins. Balance: %d coins", wager, balance), nil
}

func workHandler(ctx *command.Context) (*command.Result, error) {
	reward := ctx.Games.Work()
	balance, err := ctx.Economy.AdjustBalance(ctx.User, reward, "work shift")
	if err != nil {
		return nil, err
	}
	return success("🔨 You worked a shift and earned %d coins. Balance: %d coins", reward, balance), nil
}

func slotsHandler(ctx *command.Context) (*command.Result, error) {
	if len(ctx.Args) != 1 {
		return fail("usage: %sslots <amount>", ctx.Prefix), nil
	}
	rec, err := ctx.Economy.GetOrCreate(ctx.User)
	if err != nil {
		return nil, err
	}
	wager, res := parseWager(ctx.Args[0], rec.Balance)
	if res != nil {
		return res, nil
	}

	out := ctx.Games.Slots(wager)
	balance, err := ctx.Economy.AdjustBalance(ctx.User, out.Delta, "slot machine")
	if err != nil {
		return nil, err
	}
	reels := strings.Join(out.Reels[:], " | ")
	if out.Payout > 0 {
		return success("🎰 [ %s ] You won %d coins! Balance: %d coins", reels, out.Payout, balance), nil
	}
	return success("🎰 [ %s ] No luck, you lost %d coins. Balance: %d coins", reels, wager, balance), nil
}

// parseWager validates a wager against the player's wallet. The second
// return value is a ready failure result when the input is unusable.
func parseWager(arg string, balance int64) (int64, *command.Result) {
	var wager int64
	if strings.EqualFold(strings.TrimSpace(arg), "all") {
		wager = balance
	} else {
		n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || n <= 0 {
			return 0, fail("the wager must be a positive number, got %q", arg)
		}
		wager = n
	}
	if wager <= 0 {
		return 0, fail("you have no coins to wager, your balance: %d coins", balance)
	}
	if wager > balance {
		return 0, fail("you cannot wager %d coins, your balance: %d coins", wager, balance)
	}
	return wager, nil
}

func fail(format string, args ...any) *command.Result {
	return &command.Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

func success(format string, args ...any) *command.Result {
	return &command.Result{Success: true, Message: fmt.Sprintf(format, args...)}
}
