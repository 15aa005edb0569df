package service

import "time"

// Greeting returns the time-of-day salutation for name
func Greeting(now time.Time, name string) string {
	salutation := "Good evening"
	switch h := now.Hour(); {
	case h < 12:
		salutation = "Good morning"
	case h < 18:
		salutation = "Good afternoon"
	}
	if name == "" {
		return salutation
	}
	return salutation + ", " + name
}
