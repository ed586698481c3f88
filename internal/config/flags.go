package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagListen = flag.String("listen", "", "Asset server listen address")
	flagData   = flag.String("data", "", "Loose asset directory")
	flagImg    = flag.String("img", "", "Path to an IMG archive, overrides configured archives")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagListen != "" {
		cfg.Server.Addr = *flagListen
	}
	if *flagData != "" {
		cfg.Data.AssetDir = *flagData
	}
	if *flagImg != "" {
		cfg.Data.IMGPaths = []string{*flagImg}
	}
}
