package main

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Host:        "127.0.0.1",
		Port:        65432,
		DataDir:     "data",
		IdleTimeout: 5 * time.Minute,
		LogLevel:    "info",
	}
}

func TestConfigValidation(t *testing.T) {
	req := require.New(t)
	v := validator.New()

	req.NoError(v.Struct(validConfig()))

	bad := validConfig()
	bad.Port = 0
	req.Error(v.Struct(bad))

	bad = validConfig()
	bad.Port = 70000
	req.Error(v.Struct(bad))

	bad = validConfig()
	bad.DataDir = ""
	req.Error(v.Struct(bad))

	bad = validConfig()
	bad.IdleTimeout = 0
	req.Error(v.Struct(bad))

	bad = validConfig()
	bad.LogLevel = "verbose"
	req.Error(v.Struct(bad))
}
