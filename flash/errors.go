package flash

import (
	"errors"
	"strings"
)

var (
	ErrInvalidBank        = errors.New("flash: invalid bank")
	ErrInvalidSector      = errors.New("flash: invalid sector")
	ErrInvalidProgramSize = errors.New("flash: invalid program size")
	ErrLocked             = errors.New("flash: register locked")
	ErrLockFailure        = errors.New("flash: lock bit did not change")
	ErrTimeout            = errors.New("flash: busy timeout")
)

// Errors matched by StatusError, one per hardware error flag.
var (
	ErrOperation      = errors.New("flash: operation error")
	ErrWriteProtected = errors.New("flash: write protection error")
	ErrAlignment      = errors.New("flash: programming alignment error")
	ErrParallelism    = errors.New("flash: programming parallelism error")
	ErrSequence       = errors.New("flash: programming sequence error")
	ErrReadProtected  = errors.New("flash: read protection error")
)

var flagErrs = []struct {
	flag Status
	err  error
}{
	{OpErr, ErrOperation},
	{WrpErr, ErrWriteProtected},
	{PgaErr, ErrAlignment},
	{PgpErr, ErrParallelism},
	{PgsErr, ErrSequence},
	{RdErr, ErrReadProtected},
}

// StatusError reports the error flags raised by the hardware during an erase,
// program or option byte operation.
type StatusError struct {
	Flags Status
}

func (e *StatusError) Error() string {
	var msgs []string
	for _, fe := range flagErrs {
		if e.Flags&fe.flag != 0 {
			msgs = append(msgs, strings.TrimPrefix(fe.err.Error(), "flash: "))
		}
	}
	if len(msgs) == 0 {
		return "flash: unknown status error"
	}
	return "flash: " + strings.Join(msgs, ", ")
}

// Is reports whether target is the error of one of the raised flags.
func (e *StatusError) Is(target error) bool {
	for _, fe := range flagErrs {
		if e.Flags&fe.flag != 0 && target == fe.err {
			return true
		}
	}
	return false
}
