package flagx

import (
	"os"
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
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-a", "localhost"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "unknown flags dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next token is a flag, not a value",
			args:    []string{"-c", "-d", "dsn"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "order preserved across several flags",
			args:    []string{"-a", ":50051", "-c", "conf.json", "--other", "x"},
			allowed: []string{"-c", "-a"},
			want:    []string{"-a", ":50051", "-c", "conf.json"},
		},
		{
			name:    "empty",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFilePath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short flag", func(t *testing.T) {
		os.Args = []string{"bin", "-c", "/etc/gophauth.json"}
		assert.Equal(t, "/etc/gophauth.json", ConfigFilePath())
	})

	t.Run("long flag wins over env", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "/from/env.json")
		os.Args = []string{"bin", "-config", "/from/flag.json"}
		assert.Equal(t, "/from/flag.json", ConfigFilePath())
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "/from/env.json")
		os.Args = []string{"bin", "-a", ":1"}
		assert.Equal(t, "/from/env.json", ConfigFilePath())
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "")
		os.Args = []string{"bin"}
		assert.Empty(t, ConfigFilePath())
	})
}
