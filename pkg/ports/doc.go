/*
Package ports defines the driven ports (interfaces) of the aplus game.

These interfaces decouple the scene states and the round controller from the engine
collaborators that the game runs on, so that the same states can be driven by a real
terminal, by scripted input in tests, or by a headless simulation.

# Key Interfaces

  - InputSource: per-frame key state (released keys, first pressed key).
  - Arena: the round simulation that spawns characters and reports their outcome.
  - MatchStore: keeps the records of finished matches.
*/
package ports
