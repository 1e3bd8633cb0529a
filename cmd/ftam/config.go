package main

// Config is the client configuration, loaded from the environment.
type Config struct {
	ServerHost  string `env:"FTAM_SERVER_HOST,default=127.0.0.1" validate:"required"`
	ServerPort  int    `env:"FTAM_SERVER_PORT,default=65432" validate:"gte=1,lte=65535"`
	LocalDir    string `env:"FTAM_LOCAL_DIR,default=data" validate:"required"`
	MetricsFile string `env:"FTAM_METRICS_FILE,default=transfers.csv" validate:"required"`
}
