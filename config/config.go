package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Log       LogConfig      `yaml:"log"`
	Auth      AuthConfig     `yaml:"auth"`
	Store     StoreConfig    `yaml:"store"`
	Mail      MailConfig     `yaml:"mail"`
	Archive   ArchiveConfig  `yaml:"archive"`
	Reminders ReminderConfig `yaml:"reminders"`
	Users     []User         `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type StoreConfig struct {
	// Backend selects the store implementation: "memory" or "postgres"
	Backend      string `yaml:"backend"`
	PostgresDSN  string `yaml:"postgres_dsn"`
	MaxContracts int    `yaml:"max_contracts"`
}

type MailConfig struct {
	APIURL      string `yaml:"api_url"`
	APIToken    string `yaml:"api_token"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
}

// ArchiveConfig configures the object store holding captured signature
// images (legal records kept outside the primary store).
type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type ReminderConfig struct {
	// OffsetDays are the days-before-event marks at which reminders fire
	OffsetDays []int `yaml:"offset_days"`
	// CertificateValidityYears controls ExpiresAt on minted certificates
	CertificateValidityYears int `yaml:"certificate_validity_years"`
	// SigningDeadlineDays is the default signature deadline from "now"
	SigningDeadlineDays int `yaml:"signing_deadline_days"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Account  string `yaml:"account"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.MaxContracts < 0 {
		cfg.Store.MaxContracts = 0
	}
	if cfg.Archive.ExpireDays == 0 {
		cfg.Archive.ExpireDays = 7
	}
	if len(cfg.Reminders.OffsetDays) == 0 {
		cfg.Reminders.OffsetDays = []int{7, 3, 1}
	}
	if cfg.Reminders.CertificateValidityYears == 0 {
		cfg.Reminders.CertificateValidityYears = 10
	}
	if cfg.Reminders.SigningDeadlineDays == 0 {
		cfg.Reminders.SigningDeadlineDays = 7
	}

	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
