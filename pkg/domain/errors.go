package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation is returned when a stack operation is requested in a state that cannot honour it.
var ErrInvalidOperation = errors.New("invalid operation")

// ErrNotTop is returned when a pop or replace names a state that is not on top of the stack.
// It wraps ErrInvalidOperation.
var ErrNotTop = fmt.Errorf("state is not at top of stack: %w", ErrInvalidOperation)

// ErrStepOrder is returned in strict mode when a lifecycle step skips or repeats a phase.
var ErrStepOrder = errors.New("lifecycle step out of order")

// ErrArgType is returned when a state is loaded with an argument of the wrong type.
var ErrArgType = errors.New("argument type mismatch")

// ErrNoManager is returned when a state asks for a stack operation while not loaded by a manager.
var ErrNoManager = errors.New("state is not managed")

// ErrKeyTaken is returned when a key is already bound to a player action.
var ErrKeyTaken = errors.New("key already bound")

// ErrInvalidSetting is returned when a match configuration fails validation.
var ErrInvalidSetting = errors.New("invalid setting")

// ErrMatchNotFound is returned when a match record cannot be found in the store.
var ErrMatchNotFound = errors.New("match not found")
