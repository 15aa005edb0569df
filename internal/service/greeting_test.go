package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGreeting(t *testing.T) {
	at := func(hour int) time.Time { return time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC) }

	assert.Equal(t, "Good morning, Ada", Greeting(at(0), "Ada"))
	assert.Equal(t, "Good morning, Ada", Greeting(at(11), "Ada"))
	assert.Equal(t, "Good afternoon, Ada", Greeting(at(12), "Ada"))
	assert.Equal(t, "Good afternoon, Ada", Greeting(at(17), "Ada"))
	assert.Equal(t, "Good evening, Ada", Greeting(at(18), "Ada"))
	assert.Equal(t, "Good evening", Greeting(at(23), ""))
}
