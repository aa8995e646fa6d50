package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type ConfigInstapaper struct {
	ConsumerKey    string        `koanf:"consumer_key" validate:"required"`
	ConsumerSecret string        `koanf:"consumer_secret" validate:"required"`
	Username       string        `koanf:"username" validate:"required"`
	Password       string        `koanf:"password"`
	BaseURL        string        `koanf:"base_url" validate:"required,url"`
	RequestDelay   time.Duration `koanf:"request_delay" validate:"min=0"`
}

type ConfigKobo struct {
	Serial string `koanf:"serial" validate:"required"`
}

type ConfigExport struct {
	Dir        string `koanf:"dir" validate:"required"`
	Folder     string `koanf:"folder" validate:"required"`
	Limit      int    `koanf:"limit" validate:"min=1,max=500"`
	Archive    bool   `koanf:"archive"`
	Highlights bool   `koanf:"highlights"`
}

type ConfigState struct {
	Path string `koanf:"path" validate:"required"`
}

// ConfigMail is optional; when Server is set the rest is required.
type ConfigMail struct {
	Server   string `koanf:"server"`
	Port     int    `koanf:"port" validate:"omitempty,min=1,max=65535"`
	Sender   string `koanf:"sender" validate:"omitempty,email"`
	Password string `koanf:"password"`
	Receiver string `koanf:"receiver" validate:"omitempty,email"`
}

// Enabled reports whether mail delivery is configured.
func (m ConfigMail) Enabled() bool {
	return m.Server != ""
}

type Config struct {
	Instapaper ConfigInstapaper `koanf:"instapaper"`
	Kobo       ConfigKobo       `koanf:"kobo"`
	Server     struct {
		Port int `koanf:"port" validate:"min=1,max=65535"`
	} `koanf:"server"`
	Export   ConfigExport `koanf:"export"`
	State    ConfigState  `koanf:"state"`
	Mail     ConfigMail   `koanf:"mail"`
	LogLevel string       `koanf:"log_level" validate:"oneof=error warn info debug"`
}

func (m ConfigMail) validate(validate *validator.Validate) error {
	if !m.Enabled() {
		return nil
	}
	required := []struct {
		name  string
		value any
	}{
		{"mail.port", m.Port},
		{"mail.sender", m.Sender},
		{"mail.password", m.Password},
		{"mail.receiver", m.Receiver},
	}
	for _, r := range required {
		if err := validate.Var(r.value, "required"); err != nil {
			return fmt.Errorf("configuration validation failed: %s is required when mail.server is set", r.name)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	validate := validator.New()
	err := validate.Struct(c)
	if err == nil {
		return c.Mail.validate(validate)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return fmt.Errorf("configuration validation failed: %v", validationErrors)
	}

	return err
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser := yaml.Parser()

	if err := setDefaultValues(k); err != nil {
		return nil, err
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaultValues(k *koanf.Koanf) error {
	return k.Load(confmap.Provider(map[string]any{
		"instapaper.base_url":      "https://www.instapaper.com",
		"instapaper.request_delay": "200ms",
		"server.port":              8080,
		"export.dir":               "./export",
		"export.folder":            "starred",
		"export.limit":             25,
		"export.highlights":        true,
		"state.path":               "./instapaperkobo.db",
		"log_level":                "info",
	}, "."), nil)
}
