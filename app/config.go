package main

import "github.com/spf13/viper"

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`

	DB struct {
		Host     string `mapstructure:"POSTGRES_HOST"`
		Port     string `mapstructure:"POSTGRES_PORT"`
		User     string `mapstructure:"POSTGRES_USER"`
		Password string `mapstructure:"POSTGRES_PASSWORD"`
		Name     string `mapstructure:"POSTGRES_DB"`
	}

	Mail struct {
		Host     string `mapstructure:"MAIL_HOST"`
		Port     int    `mapstructure:"MAIL_PORT"`
		User     string `mapstructure:"MAIL_USER"`
		Password string `mapstructure:"MAIL_PASSWORD"`
		Sender   string `mapstructure:"MAIL_SENDER"`
	}

	RabbitMQ struct {
		Host     string `mapstructure:"RABBITMQ_HOST"`
		Port     string `mapstructure:"RABBITMQ_PORT"`
		User     string `mapstructure:"RABBITMQ_USER"`
		Password string `mapstructure:"RABBITMQ_PASSWORD"`
	}

	GitHub struct {
		Token  string `mapstructure:"GITHUB_TOKEN"`
		Owner  string `mapstructure:"GITHUB_OWNER"`
		Repo   string `mapstructure:"GITHUB_REPO"`
		Branch string `mapstructure:"GITHUB_BRANCH"`
	}

	Admin struct {
		Name     string `mapstructure:"ADMIN_NAME"`
		Email    string `mapstructure:"ADMIN_EMAIL"`
		Password string `mapstructure:"ADMIN_PASSWORD"`
	}

	Limiter struct {
		RPS     float64 `mapstructure:"LIMITER_RPS"`
		Burst   int     `mapstructure:"LIMITER_BURST"`
		Enabled bool    `mapstructure:"LIMITER_ENABLED"`
	}
}

func loadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Limiter.RPS == 0 {
		config.Limiter.RPS = 2
	}
	if config.Limiter.Burst == 0 {
		config.Limiter.Burst = 4
	}
	if config.GitHub.Branch == "" {
		config.GitHub.Branch = "main"
	}

	return &config, nil
}
