package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsChallengePage(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{name: "cloudflare title", text: "Attention Required! | Cloudflare", expected: true},
		{name: "turnstile prompt", text: "Please VERIFY YOU ARE HUMAN by completing the action below", expected: true},
		{name: "waiting room", text: "Just a moment...", expected: true},
		{name: "ordinary listing", text: "Golang розробник, Київ. Зарплата 3000$, віддалено.", expected: false},
		{name: "empty", text: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsChallengePage(tt.text))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "cafe", normalizeText("Café"))
	assert.Equal(t, "verify", normalizeText("VERIFY"))
}
