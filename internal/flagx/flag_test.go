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
			args:    []string{"-c", "conf.json", "-x", "ignored"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=conf.json", "-d=dsn"},
			allowed: []string{"--config"},
			want:    []string{"--config=conf.json"},
		},
		{
			name:    "flag without value followed by another flag",
			args:    []string{"-v", "-c", "conf.json"},
			allowed: []string{"-v", "-c"},
			want:    []string{"-v", "-c", "conf.json"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "1", "-b", "2"},
			allowed: []string{"-z"},
			want:    []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterArgs(tc.args, tc.allowed)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConfigFileFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"app", "-c", "settings.json", "-d", "whatever"}
	assert.Equal(t, "settings.json", ConfigFileFlags())

	os.Args = []string{"app", "--config=other.json"}
	assert.Equal(t, "other.json", ConfigFileFlags())

	os.Args = []string{"app", "-d", "whatever"}
	assert.Equal(t, "", ConfigFileFlags())
}
