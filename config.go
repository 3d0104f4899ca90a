package interstellar

import (
	"os"
	"sync"

	"github.com/spf13/viper"
)

// _impconfig is the runtime configuration, loaded from conf.toml in the
// directory named by the IMP_CONFIG environment variable. Everything has a
// usable default, so missions run fine without any configuration.
type _impconfig struct {
	outputDir  string
	ionDensity float64 // m⁻³, overrides the default interstellar medium
}

var (
	config     _impconfig
	loadConfig sync.Once
)

// impConfig returns the configuration, loading it on first use.
func impConfig() _impconfig {
	loadConfig.Do(func() {
		config = _impconfig{outputDir: "."}
		confPath := os.Getenv("IMP_CONFIG")
		if confPath == "" {
			return
		}
		v := viper.New()
		v.SetConfigName("conf")
		v.AddConfigPath(confPath)
		if err := v.ReadInConfig(); err != nil {
			return
		}
		if dir := v.GetString("general.output_path"); dir != "" {
			config.outputDir = dir
		}
		config.ionDensity = v.GetFloat64("medium.ion_density")
	})
	return config
}
