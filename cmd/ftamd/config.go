package main

import "time"

// Config is the server configuration, loaded from the environment.
type Config struct {
	Host        string        `env:"FTAM_HOST,default=127.0.0.1" validate:"required"`
	Port        int           `env:"FTAM_PORT,default=65432" validate:"gte=1,lte=65535"`
	DataDir     string        `env:"FTAM_DATA_DIR,default=data" validate:"required"`
	IdleTimeout time.Duration `env:"FTAM_IDLE_TIMEOUT,default=5m" validate:"gt=0"`
	LogLevel    string        `env:"FTAM_LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
}
