package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Currency string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Costing struct {
		PricePerKg     float64 `mapstructure:"price_per_kg"`
		DimensionsUnit string  `mapstructure:"dimensions_unit"`
		VolumeUnit     string  `mapstructure:"volume_unit"`
	} `mapstructure:"costing"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.currency", "USD")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("costing.price_per_kg", 100.0)
	v.SetDefault("costing.dimensions_unit", "mm")
	v.SetDefault("costing.volume_unit", "mm³")
}

// Load читает YAML-конфиг и переопределения из окружения (APP_HTTP_ADDR и т.п.).
// Необязательный .env рядом с процессом подхватывается до чтения окружения.
func Load(path string) (Config, error) {
	var c Config
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
