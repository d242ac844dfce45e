package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout_ContentHeight(t *testing.T) {
	assert.Equal(t, 22, NewLayout(80, 24).ContentHeight())
	assert.Equal(t, 1, NewLayout(80, 1).ContentHeight())
}

func TestLayout_Screen(t *testing.T) {
	out := NewLayout(60, 5).Screen("Notifications", "3 unread", "body", "q quit")
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "pmwatch · Notifications")
	assert.Contains(t, lines[0], "3 unread")
	assert.Equal(t, "body", strings.TrimSpace(lines[1]))
	assert.Contains(t, lines[2], "q quit")
}
