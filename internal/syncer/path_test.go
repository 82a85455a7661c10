package syncer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitEntryPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantGroup []string
		wantTitle string
		wantErr   bool
	}{
		{
			name:      "title only",
			input:     "Gmail",
			wantGroup: nil,
			wantTitle: "Gmail",
		},
		{
			name:      "single group",
			input:     "Email/Gmail",
			wantGroup: []string{"Email"},
			wantTitle: "Gmail",
		},
		{
			name:      "nested groups",
			input:     "Email/Work/Exchange",
			wantGroup: []string{"Email", "Work"},
			wantTitle: "Exchange",
		},
		{
			name:      "leading slash ignored",
			input:     "/Email/Gmail",
			wantGroup: []string{"Email"},
			wantTitle: "Gmail",
		},
		{
			name:      "doubled slash ignored",
			input:     "Email//Gmail",
			wantGroup: []string{"Email"},
			wantTitle: "Gmail",
		},
		{
			name:    "empty path",
			input:   "",
			wantErr: true,
		},
		{
			name:    "slashes only",
			input:   "///",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			group, title, err := SplitEntryPath(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantGroup, group)
			require.Equal(t, tc.wantTitle, title)
		})
	}
}
