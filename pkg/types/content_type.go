package types

import (
	"fmt"
	"strings"
)

type ContentType string

const (
	Course  ContentType = "course"
	Guide   ContentType = "guide"
	Event   ContentType = "event"
	Service ContentType = "service"
)

var ContentTypes = []ContentType{Course, Guide, Event, Service}

func (c ContentType) Valid() bool {
	switch c {
	case Course, Guide, Event, Service:
		return true
	}
	return false
}

func (c ContentType) String() string {
	return string(c)
}

func ParseContentType(value string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(value)))
	if !ct.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownContentType, value)
	}
	return ct, nil
}
