/*
Package observability provides tools for monitoring the scene lifecycle of aplus.

It includes Prometheus metrics fed from lifecycle hooks and a transition journal that
records the transitions of a session for later inspection or rendering.
*/
package observability
