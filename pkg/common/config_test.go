package common

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/dr0pdb/icecanelex/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDirectory = path.Join(test.TestDirectory, "common")

func TestDefaultConfigIsValid(t *testing.T) {
	conf := NewDefaultConfig()
	assert.Nil(t, conf.Validate(), "Default config should be valid")
	assert.Equal(t, "127.0.0.1:9100", conf.CoordinatorTarget())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty address", func(c *Config) { c.Address = "" }},
		{"empty port", func(c *Config) { c.Port = "" }},
		{"zero peers", func(c *Config) { c.Peers = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"negative subworkers", func(c *Config) { c.SubWorkers = -2 }},
		{"zero chunk", func(c *Config) { c.MinChunkSize = 0 }},
		{"zero dial timeout", func(c *Config) { c.DialTimeout = 0 }},
		{"negative retries", func(c *Config) { c.ReportRetries = -1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := NewDefaultConfig()
			tt.mutate(conf)
			assert.NotNil(t, conf.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	test.CreateTestDirectory(testDirectory)
	defer test.CleanupTestDirectory(testDirectory)

	p := path.Join(testDirectory, "config.yaml")
	contents := `
port: "9200"
peers: 8
workers: 2
subWorkers: 4
dialTimeout: 250ms
logLevel: debug
`
	require.Nil(t, os.WriteFile(p, []byte(contents), 0o644))

	conf := NewDefaultConfig()
	require.Nil(t, conf.LoadFromFile(p))

	assert.Equal(t, "127.0.0.1", conf.Address, "Address should keep its default")
	assert.Equal(t, "9200", conf.Port)
	assert.Equal(t, 8, conf.Peers)
	assert.Equal(t, 2, conf.Workers)
	assert.Equal(t, 4, conf.SubWorkers)
	assert.Equal(t, 250*time.Millisecond, conf.DialTimeout)
	assert.Equal(t, defaultMinChunkSize, conf.MinChunkSize)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Nil(t, conf.Validate())
}

func TestLoadFromFileLeavesConfigUntouchedOnError(t *testing.T) {
	test.CreateTestDirectory(testDirectory)
	defer test.CleanupTestDirectory(testDirectory)

	conf := NewDefaultConfig()
	err := conf.LoadFromFile(path.Join(testDirectory, "missing.yaml"))
	assert.NotNil(t, err)
	assert.Equal(t, NewDefaultConfig(), conf)

	p := path.Join(testDirectory, "broken.yaml")
	require.Nil(t, os.WriteFile(p, []byte("peers: [1, 2"), 0o644))
	assert.NotNil(t, conf.LoadFromFile(p))
	assert.Equal(t, NewDefaultConfig(), conf)
}
