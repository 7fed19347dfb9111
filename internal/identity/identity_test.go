package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToGISName(t *testing.T) {
	n := NewNormalizer("devorg")

	assert.Equal(t, "alice_devorg", n.ToGISName("alice"))
	assert.Equal(t, "alice_b_devorg", n.ToGISName("alice_b"))
}

func TestToLMSLoginID(t *testing.T) {
	n := NewNormalizer("devorg")

	tests := []struct {
		name    string
		gisName string
		want    string
	}{
		{"plain suffix", "alice_devorg", "alice"},
		{"no underscore passes through", "alice", "alice"},
		{"only final segment stripped", "alice_b_devorg", "alice_b"},
		{"empty string", "", ""},
		{"trailing underscore passes through", "alice_", "alice_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.ToLMSLoginID(tt.gisName))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	n := NewNormalizer("devorg")

	for _, loginID := range []string{"alice", "bob99", "x.y-z", "alice_b"} {
		assert.Equal(t, loginID, n.ToLMSLoginID(n.ToGISName(loginID)))
	}
}

func TestToGISNames(t *testing.T) {
	n := NewNormalizer("org")

	assert.Equal(t, []string{"a_org", "b_org"}, n.ToGISNames([]string{"a", "b"}))
	assert.Empty(t, n.ToGISNames(nil))
}

func TestToLMSLoginIDs(t *testing.T) {
	n := NewNormalizer("org")

	assert.Equal(t, []string{"a", "b"}, n.ToLMSLoginIDs([]string{"a_org", "b_org"}))
}
