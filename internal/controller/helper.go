package controller

import (
	"time"

	"github.com/google/uuid"
)

// time ordered, so ids sort in log order
func (c controller) generateTimeBasedId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// read deadline slightly longer than the ping period
func (c controller) pongWait() time.Duration {
	return c.cfg.PingPeriod * 10 / 9
}
