//go:build noos

package flash

import (
	"embedded/rtos"
	"time"
	"unsafe"
)

// FLASH is the flash interface of the device.
var FLASH = New(unsafe.Pointer(baseAddr))

func nanotime() time.Duration { return rtos.Nanotime() }
