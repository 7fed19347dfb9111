package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElideString(t *testing.T) {
	assert.Equal(t, "abc...xyz", ElideString("abcdefuvwxyz"))
	assert.Equal(t, "123...789", ElideString("123456789"))
}

func TestElideStringShortValuesFullyMasked(t *testing.T) {
	assert.Equal(t, "***", ElideString("12345678"))
	assert.Equal(t, "***", ElideString(""))
}
