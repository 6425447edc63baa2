package config

import (
	"strings"

	"github.com/spf13/viper"
)

func newKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_", "-", "_")
}

// BindEnv configures v to read FRONTNOTE_ prefixed environment variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(newKeyReplacer())
	v.AutomaticEnv()
}
