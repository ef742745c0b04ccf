package mahjong

import (
	"errors"
	"fmt"
)

var (
	ErrWrongStage           = errors.New("action not allowed in current stage")
	ErrNotYourTurn          = errors.New("not the acting seat's turn")
	ErrPendingDiscard       = errors.New("pending discard must be resolved first")
	ErrNoPendingDiscard     = errors.New("no pending discard")
	ErrTileNotInHand        = errors.New("tile not in hand")
	ErrInsufficientCopies   = errors.New("insufficient copies for kong")
	ErrKongBreaksTenpai     = errors.New("kong would break tenpai under riichi")
	ErrExposedKongForbidden = errors.New("exposed kong forbidden under concealed riichi")
	ErrUnknownTile          = errors.New("unknown tile code")
	ErrNotTenpai            = errors.New("hand is not tenpai")
	ErrNoWinningHand        = errors.New("no valid winning decomposition")
	ErrAlreadyRiichi        = errors.New("riichi already declared")
	ErrPreKongActive        = errors.New("pre-round kong already active")
	ErrPreKongTiles         = errors.New("not enough tiles for pre-round kong")
	ErrMustDraw             = errors.New("must draw before acting")
	ErrAlreadyDrawn         = errors.New("already drawn this turn")
	ErrAlreadyPassed        = errors.New("already passed on this discard")
	ErrOwnDiscard           = errors.New("cannot respond to own discard")
	ErrInvalidSeat          = errors.New("invalid seat")
	ErrUnknownKind          = errors.New("unknown kind")
	ErrUnknownAction        = errors.New("unknown action")
	ErrTooManyCopies        = errors.New("more than four copies of a tile")
	ErrBadHandSize          = errors.New("bad hand size")
)

// ActionError 动作被拒绝，Err 为上面的哨兵错误之一
type ActionError struct {
	Action Action
	Seat   int
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("seat %d %s rejected: %v", e.Seat, e.Action, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

func reject(action Action, seat int, err error) error {
	return &ActionError{Action: action, Seat: seat, Err: err}
}

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrWrongStage, "WRONG_STAGE"},
	{ErrNotYourTurn, "NOT_YOUR_TURN"},
	{ErrPendingDiscard, "PENDING_DISCARD"},
	{ErrNoPendingDiscard, "NO_PENDING_DISCARD"},
	{ErrTileNotInHand, "TILE_NOT_IN_HAND"},
	{ErrInsufficientCopies, "INSUFFICIENT_COPIES"},
	{ErrKongBreaksTenpai, "KONG_BREAKS_TENPAI"},
	{ErrExposedKongForbidden, "EXPOSED_KONG_FORBIDDEN"},
	{ErrUnknownTile, "UNKNOWN_TILE"},
	{ErrNotTenpai, "NOT_TENPAI"},
	{ErrNoWinningHand, "NO_WINNING_HAND"},
	{ErrAlreadyRiichi, "ALREADY_RIICHI"},
	{ErrPreKongActive, "PRE_KONG_ACTIVE"},
	{ErrPreKongTiles, "PRE_KONG_TILES"},
	{ErrMustDraw, "MUST_DRAW"},
	{ErrAlreadyDrawn, "ALREADY_DRAWN"},
	{ErrAlreadyPassed, "ALREADY_PASSED"},
	{ErrOwnDiscard, "OWN_DISCARD"},
	{ErrInvalidSeat, "INVALID_SEAT"},
	{ErrUnknownKind, "UNKNOWN_KIND"},
	{ErrUnknownAction, "UNKNOWN_ACTION"},
	{ErrTooManyCopies, "TOO_MANY_COPIES"},
	{ErrBadHandSize, "BAD_HAND_SIZE"},
}

// ErrorCode 规则错误对应的线上编码，非规则错误返回空串
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}
