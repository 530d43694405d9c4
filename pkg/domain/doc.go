/*
Package domain contains the core vocabulary and data model of the aplus game.

It defines the lifecycle phases shared by every scene state, the sentinel errors
returned by the scene manager, the events emitted through lifecycle hooks, and the
match model (settings, per-round statistics, score aggregation). This package is kept
pure and free of engine, I/O or scheduling concerns.

# Key Entities

  - StatePhase / ObserverPhase / Step: the coarse phases, the fine-grained observer
    phases and the 18 lifecycle micro-steps a scene state goes through.
  - MapSetting / RoundSetting / PlayerSetting: immutable configuration of a match.
  - MapStat: the mutable per-match statistics (rounds, players, score changes).
  - MatchRecord: the summary of a finished match.
*/
package domain
