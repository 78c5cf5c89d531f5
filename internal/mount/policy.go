package mount

import (
	"errors"
	"fmt"
	"strings"
)

// Policy decides what unmounting does to the registry entry.
type Policy int

const (
	// Preserve keeps the entry so a remount with the same id picks up the
	// edited configuration.
	Preserve Policy = iota
	// Clear removes the entry.
	Clear
)

var ErrBadPolicy = errors.New("mount: unknown unmount policy")

func (p Policy) String() string {
	if p == Clear {
		return "clear"
	}
	return "preserve"
}

// ParseUnmountPolicy accepts "preserve" and "clear". Empty means Preserve.
func ParseUnmountPolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "preserve":
		return Preserve, nil
	case "clear":
		return Clear, nil
	}
	return Preserve, fmt.Errorf("%w: %q", ErrBadPolicy, s)
}
