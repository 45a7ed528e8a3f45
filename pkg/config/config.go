package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadAndWatch reads config/{service}.yaml (or ./{service}.yaml) into out and
// keeps it up to date when the file changes. Environment variables override
// file values: with service "gopherpay", GOPHERPAY_DB_SOURCE_NAME overrides
// db.source_name. A .env file in the working directory is loaded first.
//
// onChange hooks run after every successful reload, in order.
func LoadAndWatch(service string, out interface{}, onChange ...func(v *viper.Viper)) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(service)
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix(strings.ToUpper(service))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(out); err != nil {
		return nil, err
	}

	log.Printf("[%s] config loaded from %s", service, v.ConfigFileUsed())

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("[%s] config file changed: %s", service, e.Name)

		if err := v.Unmarshal(out); err != nil {
			log.Printf("[%s] reload config error: %v", service, err)
			return
		}
		for _, fn := range onChange {
			fn(v)
		}
		log.Printf("[%s] config reloaded OK", service)
	})
	v.WatchConfig()

	return v, nil
}
