package hearts

import "errors"

var (
	ErrTrickComplete = errors.New("trick already holds four cards")
)
