// Package settings loads the user settings applied to commits and operations.
package settings

import (
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of environment variables overriding settings, e.g. STRATA_USER_NAME
	EnvPrefix = "strata"

	// ConfigName is the base name of the settings file, e.g. strata.yaml
	ConfigName = "strata"

	// ConfigEnvVar may point to a settings file
	ConfigEnvVar = "STRATA_CONFIG"

	keyUserName  = "user.name"
	keyUserEmail = "user.email"
	keyHostname  = "operation.hostname"
	keyUsername  = "operation.username"

	// NoName is the author name used when no name is configured
	NoName = "(no name configured)"

	// NoEmail is the author email used when no email is configured
	NoEmail = "(no email configured)"
)

// UserSettings holds the identity used to sign commits and operations
type UserSettings struct {
	v   *viper.Viper
	now func() time.Time
}

// Option for user settings
type Option func(*UserSettings)

// Viper uses an existing viper configuration
func Viper(v *viper.Viper) Option {
	return func(s *UserSettings) {
		if v != nil {
			s.v = v
		}
	}
}

// Clock sets the time source used to sign commits
func Clock(now func() time.Time) Option {
	return func(s *UserSettings) {
		if now != nil {
			s.now = now
		}
	}
}

// Values sets explicit values, e.g. "user.name"
func Values(values map[string]interface{}) Option {
	return func(s *UserSettings) {
		for k, v := range values {
			s.v.Set(k, v)
		}
	}
}

// New user settings. Values not explicitly set are looked up in the environment, then in the settings file.
func New(opts ...Option) *UserSettings {
	s := &UserSettings{
		v:   viper.New(),
		now: model.Now,
	}
	for _, apply := range opts {
		apply(s)
	}

	s.v.SetEnvPrefix(EnvPrefix)
	s.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	s.v.AutomaticEnv()
	s.v.SetDefault(keyUserName, NoName)
	s.v.SetDefault(keyUserEmail, NoEmail)
	s.v.SetDefault(keyHostname, defaultHostname())
	s.v.SetDefault(keyUsername, defaultUsername())
	return s
}

// Load user settings from a settings file. When file is empty, the file designated by $STRATA_CONFIG is used,
// or a strata.yaml file found in the current directory or in $HOME/.strata.
//
// A missing settings file is not an error.
func Load(file string, opts ...Option) (*UserSettings, error) {
	s := New(opts...)
	if file == "" {
		file = os.Getenv(ConfigEnvVar)
	}
	if file != "" {
		s.v.SetConfigFile(file)
	} else {
		s.v.SetConfigName(ConfigName)
		s.v.AddConfigPath(".")
		s.v.AddConfigPath("$HOME/.strata")
	}

	if err := s.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return s, nil
		}
		if file != "" && os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	return s, nil
}

// UserName used to sign commits
func (s *UserSettings) UserName() string {
	return s.v.GetString(keyUserName)
}

// UserEmail used to sign commits
func (s *UserSettings) UserEmail() string {
	return s.v.GetString(keyUserEmail)
}

// Hostname recorded on operations
func (s *UserSettings) Hostname() string {
	return s.v.GetString(keyHostname)
}

// Username recorded on operations
func (s *UserSettings) Username() string {
	return s.v.GetString(keyUsername)
}

// Signature of the user, at the current time
func (s *UserSettings) Signature() model.Signature {
	return model.Signature{
		Name:      s.UserName(),
		Email:     s.UserEmail(),
		Timestamp: s.now(),
	}
}

// ConfigFileUsed yields the settings file actually loaded, if any
func (s *UserSettings) ConfigFileUsed() string {
	return s.v.ConfigFileUsed()
}

func defaultHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}

func defaultUsername() string {
	u, err := user.Current()
	if err != nil {
		return os.Getenv("USER")
	}
	return u.Username
}
