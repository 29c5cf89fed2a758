// Package config loads the yw7tools command configuration.
//
// Values come from, in increasing priority: built-in defaults, the config
// file (.yw7tools.yaml or .yw7tools.toml in the working or home directory),
// a .env file, YW7TOOLS_* environment variables and command flags bound to
// the viper instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/erraggy/yw7tools/sanitizer"
	"github.com/erraggy/yw7tools/ywerrors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the command.
const EnvPrefix = "YW7TOOLS"

// EncodingConfig configures decoding of imported documents.
type EncodingConfig struct {
	Fallbacks []string `mapstructure:"fallbacks" validate:"dive,required,encoding"`
}

// LogConfig configures the command's logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce" validate:"gte=0"`
	MetricsAddr string        `mapstructure:"metrics_addr" validate:"omitempty,hostname_port"`
}

// Config holds the runtime configuration of the command.
type Config struct {
	Encoding      EncodingConfig `mapstructure:"encoding"`
	Log           LogConfig      `mapstructure:"log"`
	Watch         WatchConfig    `mapstructure:"watch"`
	Strict        bool           `mapstructure:"strict"`
	IncludeInfo   bool           `mapstructure:"include_info"`
	Indent        string         `mapstructure:"indent" validate:"indent"`
	Backup        bool           `mapstructure:"backup"`
	LockCheck     bool           `mapstructure:"lock_check"`
	SequentialIDs bool           `mapstructure:"sequential_ids"`
}

// New returns a viper instance reading cfgFile, or .yw7tools.{yaml,toml} in
// the working and home directories when cfgFile is empty, plus YW7TOOLS_*
// environment variables. A missing default config file is not an error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".yw7tools")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, &ywerrors.ConfigError{Option: "config", Value: cfgFile, Message: "cannot read config file", Cause: err}
		}
	}
	return v, nil
}

// LoadDotEnv loads environment variables from the given .env files, or from
// .env in the working directory when none is given. Variables already set
// are kept. A missing default .env file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(files...); err != nil {
		return &ywerrors.ConfigError{Option: "env", Message: "cannot load .env file", Cause: err}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("encoding.fallbacks", sanitizer.DefaultFallbacks)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("watch.debounce", 200*time.Millisecond)
	v.SetDefault("watch.metrics_addr", "")
	v.SetDefault("strict", false)
	v.SetDefault("include_info", true)
	v.SetDefault("indent", "\t")
	v.SetDefault("backup", true)
	v.SetDefault("lock_check", true)
	v.SetDefault("sequential_ids", false)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, &ywerrors.ConfigError{Option: "config", Message: "cannot decode configuration", Cause: err}
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("encoding", func(fl validator.FieldLevel) bool {
		return sanitizer.Supported(fl.Field().String())
	})
	_ = v.RegisterValidation("indent", func(fl validator.FieldLevel) bool {
		return strings.Trim(fl.Field().String(), " \t") == ""
	})
	return v
}

// Validate checks cfg against its validation tags. The error is a
// *ywerrors.ConfigError naming the first offending key.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ywerrors.ConfigError{Option: "config", Cause: err}
	}
	fe := verrs[0]
	return &ywerrors.ConfigError{
		Option:  configKey(fe.Namespace()),
		Value:   fe.Value(),
		Message: fieldMessage(fe),
	}
}

// configKey turns "Config.encoding.fallbacks[1]" into "encoding.fallbacks[1]".
func configKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "encoding":
		return "unknown encoding"
	case "indent":
		return "must contain only spaces and tabs"
	case "hostname_port":
		return "must be host:port"
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return "is invalid"
	}
}
