package stats

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestSettingStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrSettingNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("find setting: %w", ErrSettingNotFound), http.StatusNotFound},
		{"invalid value", ErrInvalidSetting, http.StatusBadRequest},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := settingStatus(tt.err); got != tt.want {
				t.Errorf("settingStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
