package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Business-rule rejections are ordinary outcomes, not failures: callers
// render them as a no-op or a message, never log them as errors, and never
// retry them.

var (
	// Account lifecycle
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateName   = errors.New("account name already taken")
	ErrBadCredential   = errors.New("invalid credentials")

	// Economy operations
	ErrAccountLocked  = errors.New("account is locked")
	ErrNotLocked      = errors.New("account is not locked")
	ErrCooldownActive = errors.New("virtue cooldown has not elapsed")
	ErrSelfReset      = errors.New("bail-out must come from a peer")

	// Undo
	ErrNothingToUndo  = errors.New("no undoable entry")
	ErrUndoWindowOver = errors.New("undo window has expired")
	ErrUndoNotOwned   = errors.New("most recent entry belongs to another account")

	// Input
	ErrInvalidContract = errors.New("contract parameters are invalid")
)
