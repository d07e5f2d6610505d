package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSecret(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr error
	}{
		{
			name: "explicit secret wins in production",
			cfg:  Config{Environment: EnvProduction, SessionSecret: "operator-secret"},
			want: "operator-secret",
		},
		{
			name: "explicit secret wins in development",
			cfg:  Config{Environment: EnvDevelopment, SessionSecret: "operator-secret"},
			want: "operator-secret",
		},
		{
			name:    "missing secret fails in production",
			cfg:     Config{Environment: EnvProduction},
			wantErr: ErrMissingSessionSecret,
		},
		{
			name: "missing secret falls back in development",
			cfg:  Config{Environment: EnvDevelopment},
			want: fallbackSessionSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := ResolveSecret(tt.cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, string(secret))
		})
	}
}
