package server_test

import (
	"testing"

	"catalog-sync/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsValidMode(t *testing.T) {
	tests := []struct {
		name string
		mode string
		want bool
	}{
		{"Full", server.ModeFull, true},
		{"ReadOnly", server.ModeReadOnly, true},
		{"Invalid", "invalid", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{Mode: tt.mode}
			assert.Equal(t, tt.want, c.IsValidMode())
		})
	}
}

func TestConfig_AllowsMutations(t *testing.T) {
	assert.True(t, server.Config{Mode: server.ModeFull}.AllowsMutations())
	assert.False(t, server.Config{Mode: server.ModeReadOnly}.AllowsMutations())
	assert.False(t, server.Config{}.AllowsMutations())
}
