package match

import (
	"log/slog"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
)

// TooEasy reports whether a round awards no winning points: more than one character
// took part and every one of them won.
func TooEasy(results []ports.CharacterResult) bool {
	if len(results) <= 1 {
		return false
	}
	for _, r := range results {
		if !r.Won {
			return false
		}
	}
	return true
}

// ResolveRound records the outcome of the current round into stat.
// Winners earn the round's winning points unless the round was too easy; the health and
// score changes reported by the arena are appended after them.
func ResolveRound(stat *domain.MapStat, results []ports.CharacterResult, logger *slog.Logger) {
	round := stat.Current()
	if round == nil {
		logger.Warn("resolving scores outside of a round", "current_round", stat.CurrentRound)
		return
	}
	round.TooEasyNoPoint = TooEasy(results)

	for _, r := range results {
		idx := stat.PlayerIndex(r.PlayerID)
		if idx < 0 {
			logger.Warn("result for unknown player", "player_id", r.PlayerID)
			continue
		}
		rps := stat.RoundPlayer(stat.CurrentRound, idx)
		rps.Won = r.Won
		rps.HealthChanges = append(rps.HealthChanges, r.HealthChanges...)
		rps.ScoreChanges = append(rps.ScoreChanges, r.ScoreChanges...)
		if r.Won && !round.TooEasyNoPoint {
			rps.ScoreChanges = append(rps.ScoreChanges, round.NewScoreChange(domain.ScoreWon, r.WonCause))
		}
	}
}
