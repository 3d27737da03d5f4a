package domain

import "errors"

var (
	// ErrNotFound is returned by stores, caches, and venue lookups when the
	// requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoMatch is the resolver's terminal "no venue-B equivalent exists"
	// outcome. It is an expected result, not a failure: callers must be able
	// to tell it apart from transport errors, which are wrapped separately.
	ErrNoMatch = errors.New("no match")

	// ErrUnparseableTicker means a ticker does not carry the structured
	// league/date/teams block.
	ErrUnparseableTicker = errors.New("unparseable ticker")

	// ErrUnknownTeam means a team code has no alias dictionary entry for its
	// league.
	ErrUnknownTeam = errors.New("unknown team code")
)
