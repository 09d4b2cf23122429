//go:build !noos

package flash

import "time"

var epoch = time.Now()

func nanotime() time.Duration { return time.Since(epoch) }
