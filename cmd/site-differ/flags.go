package main

import (
	"flag"
	"time"
)

type AppFlags struct {
	ConfigFile string
	URLsFile   string
	Interval   time.Duration
	LogLevel   string
}

func ParseFlags() AppFlags {
	configFile := flag.String("config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	configFileAlias := flag.String("c", "", "Alias for -config")

	urlsFile := flag.String("urls", "", "Path to a text file with one URL per line, overriding the configured URL list.")
	urlsFileAlias := flag.String("u", "", "Alias for -urls")

	interval := flag.Duration("interval", 0, "Run a check pass on this interval (e.g. 15m). Zero runs a single pass and exits.")
	intervalAlias := flag.Duration("i", 0, "Alias for -interval")

	logLevel := flag.String("log-level", "", "Override the configured log level (debug, info, warn, error).")

	flag.Parse()

	flags := AppFlags{LogLevel: *logLevel}

	if *configFile != "" {
		flags.ConfigFile = *configFile
	} else if *configFileAlias != "" {
		flags.ConfigFile = *configFileAlias
	}

	if *urlsFile != "" {
		flags.URLsFile = *urlsFile
	} else if *urlsFileAlias != "" {
		flags.URLsFile = *urlsFileAlias
	}

	if *interval > 0 {
		flags.Interval = *interval
	} else if *intervalAlias > 0 {
		flags.Interval = *intervalAlias
	}

	return flags
}
