package game

import "errors"

var (
	ErrRoomNotFound    = errors.New("room-not-found")
	ErrRoomClosed      = errors.New("room-closed")
	ErrClaimInProgress = errors.New("claim-in-progress")
	ErrStaleClaim      = errors.New("stale-claim")
)
