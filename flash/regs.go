package flash

import "github.com/clktmr/f4flash/periph"

const (
	baseAddr uintptr = 0x4002_3c00

	// Unlock key sequences for CR and OPTCR.
	key1    = 0x4567_0123
	key2    = 0xcdef_89ab
	optKey1 = 0x0819_2a3b
	optKey2 = 0x4c5d_6e7f
)

type registers struct {
	acr     periph.R32[accessControl]
	keyr    periph.U32
	optkeyr periph.U32
	sr      periph.R32[Status]
	cr      periph.R32[control]
	optcr   periph.R32[optionControl]
	optcr1  periph.U32
}

type accessControl uint32

const (
	latencyMask accessControl = 0xf

	prefetchEnable accessControl = 1 << (iota + 7)
	icacheEnable
	dcacheEnable
	icacheReset
	dcacheReset
)

// Status is the content of the status register.
type Status uint32

const (
	EOP    Status = 1 << 0 // end of operation
	OpErr  Status = 1 << 1 // operation error
	WrpErr Status = 1 << 4 // write protection error
	PgaErr Status = 1 << 5 // programming alignment error
	PgpErr Status = 1 << 6 // programming parallelism error
	PgsErr Status = 1 << 7 // programming sequence error
	RdErr  Status = 1 << 8 // PCROP read protection error
	Busy   Status = 1 << 16

	errFlags = OpErr | WrpErr | PgaErr | PgpErr | PgsErr | RdErr
)

type control uint32

const (
	pg   control = 1 << 0 // programming
	ser  control = 1 << 1 // sector erase
	mer  control = 1 << 2 // mass erase bank 1
	mer1 control = 1 << 15

	snbShift          = 3
	snbMask   control = 0x1f << snbShift
	psizeShift        = 8
	psizeMask control = 0x3 << psizeShift

	strt  control = 1 << 16
	lock  control = 1 << 31

	modeMask = pg | ser | mer | mer1
)

type optionControl uint32

const (
	optLock optionControl = 1 << 0
	optStrt optionControl = 1 << 1

	borShift               = 2
	borMask  optionControl = 0x3 << borShift
)
