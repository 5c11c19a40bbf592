package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-d", "postgres://x", "-a", ":9000"},
			allowed: []string{"-d"},
			want:    []string{"-d", "postgres://x"},
		},
		{
			name:    "equals form",
			args:    []string{"-n=8", "-a", ":9000"},
			allowed: []string{"-n"},
			want:    []string{"-n=8"},
		},
		{
			name:    "flag followed by flag keeps no value",
			args:    []string{"-d", "-n", "4"},
			allowed: []string{"-d", "-n"},
			want:    []string{"-d", "-n", "4"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"reset", "-x", "1", "--y=2"},
			allowed: []string{"-d"},
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv(ConfigEnv, "")

	assert.Equal(t, "a.json", ConfigPath([]string{"-c", "a.json", "-d", "dsn"}))
	assert.Equal(t, "b.json", ConfigPath([]string{"-config=b.json"}))
	assert.Equal(t, "", ConfigPath([]string{"-d", "dsn"}))

	t.Setenv(ConfigEnv, "env.json")
	assert.Equal(t, "env.json", ConfigPath(nil))
	assert.Equal(t, "flag.json", ConfigPath([]string{"-c", "flag.json"}))
}
