/*
Package scene implements the hierarchical scene state lifecycle.

A Manager owns a stack of states. Gameplay code requests Push, Replace or Pop; the
manager applies the request on its next Step and drives every affected state through
the 18 lifecycle micro-steps, running the incoming and outgoing states' phase groups
concurrently.

# Key Components

  - Node / Base: a scene state. Embed Base[A, R] and override the micro-steps you need.
  - Observable: a Base that broadcasts its lifecycle to observers through a per-state
    digest queue, fast-forwarding observers that register late.
  - Manager: the stack, its transition choreography and the tick loop (Step, Update, Run).

# Transitions

	Push:    {new load}  with {old blur};  {new visible} with {old invisible}; {new focus}
	Replace: {new load}  with {old blur};  {new visible} with {old invisible}; {new focus} with {old unload}
	Pop:     {old blur};  {top visible(old, result)} with {old invisible}; {top focus(old, result)} with {old unload}

By default a newer request replaces an older one that has not started yet. Use
WithQueuedTransitions to keep them all.
*/
package scene
