/*
Package setup prepares the players of a match before it starts.

The Lobby is the root state of the setup stack. It pushes a KeyBinding state for every
player that lacks a complete set of action keys; the KeyBinding state reads one pressed
key per action, refusing keys that are already bound.
*/
package setup
