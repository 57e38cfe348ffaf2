package main

import (
	"context"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"

	"github.com/kelsos/xos-wrap/internal/config"
	"github.com/kelsos/xos-wrap/internal/models"
)

func simulatedConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Simulate = true
	cfg.SimulatedBalance = "5"
	return cfg
}

func TestRunOperationExitCode(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	tests := []struct {
		name            string
		amount          string
		repeat          int
		continueOnError bool
		want            int
	}{
		{"all confirmed", "1", 2, false, 0},
		{"second attempt exceeds balance", "3", 2, false, 1},
		{"continue still reports failure", "3", 3, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := runOperation(context.Background(), simulatedConfig(), models.Wrap, tt.amount, tt.repeat, tt.continueOnError)
			assert.Equal(t, tt.want, code)
		})
	}
}
