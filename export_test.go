package zia

import (
	"context"
	"time"
)

// SetSleepFunc replaces the rate-limit sleep of c.
func SetSleepFunc(c *Client, fn func(context.Context, time.Duration) error) {
	c.sleep = fn
}

// SetClock replaces the clock used for key obfuscation.
func SetClock(c *Client, fn func() time.Time) {
	c.now = fn
}

// SetHelperClock replaces the clock used for audit comments.
func SetHelperClock(h *Helper, fn func() time.Time) {
	h.now = fn
}
