package config

import (
	"github.com/spf13/viper"
)

// listKeys are decoded element by element into the existing slice, so a
// shorter list from the file would leave stale defaults behind.
var listKeys = map[string]func(cfg *Config){
	"alert.types":             func(cfg *Config) { cfg.Alert.Types = nil },
	"payment.gateway_methods": func(cfg *Config) { cfg.Payment.GatewayMethods = nil },
}

// loadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values; lists present in the file replace the
// current list.
func loadFile(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}
	for key, reset := range listKeys {
		if v.IsSet(key) {
			reset(cfg)
		}
	}
	return v.Unmarshal(cfg)
}
