package economy

import (
	"errors"

	"pursebot/internal/command"
	econ "pursebot/internal/economy"
)

func dailyHandler(ctx *command.Context) (*command.Result, error) {
	res, err := ctx.Economy.CollectDaily(ctx.User)
	if err != nil {
		var cd *econ.DailyCooldownError
		if errors.As(err, &cd) {
			return &command.Result{Success: false, Message: "⏳ " + cd.Error()}, nil
		}
		return nil, err
	}
	if res.Streak > 1 {
		return ok("🎁 You collected %d coins! Streak: %d days", res.Amount, res.Streak), nil
	}
	return ok("🎁 You collected %d coins!", res.Amount), nil
}
