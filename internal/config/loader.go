package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	// If no arguments provided and no config file, show help/usage
	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Total:       10,
		Concurrency: 10,
		Timeout:     60 * time.Second,
		ConfigFile:  configPath,
		Tracing:     TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.BodyFile = strings.TrimSpace(cfg.BodyFile)

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return wrapSetting("target", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "body"); ok {
		val, err := asString(raw)
		if err != nil {
			return wrapSetting("body", err)
		}
		cfg.Body = val
	}

	if raw, ok := lookupSetting(settings, "bodyfile", "body_file", "body-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return wrapSetting("body_file", err)
		}
		cfg.BodyFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "total", "requests"); ok {
		val, err := asInt(raw)
		if err != nil {
			return wrapSetting("total", err)
		}
		cfg.Total = val
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return wrapSetting("concurrency", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return wrapSetting("timeout", err)
		}
		cfg.Timeout = val
	}

	if raw, ok := lookupSetting(settings, "printresponse", "print_response", "print-response"); ok {
		val, err := asBool(raw)
		if err != nil {
			return wrapSetting("print_response", err)
		}
		cfg.PrintResponse = val
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return wrapSetting("json_output", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return wrapSetting("dashboard", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "reportfile", "report_file", "report-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return wrapSetting("report_file", err)
		}
		cfg.ReportFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return err
		}
	}

	return nil
}

func applyTracingSettings(tracing *TracingConfig, raw interface{}) error {
	section, err := toStringKeyMap(raw)
	if err != nil {
		return wrapSetting("tracing", err)
	}

	if val, ok := section["endpoint"]; ok {
		str, err := asString(val)
		if err != nil {
			return wrapSetting("tracing.endpoint", err)
		}
		tracing.Endpoint = strings.TrimSpace(str)
	}
	if val, ok := section["protocol"]; ok {
		str, err := asString(val)
		if err != nil {
			return wrapSetting("tracing.protocol", err)
		}
		tracing.Protocol = strings.ToLower(strings.TrimSpace(str))
	}
	if val, ok := section["service_name"]; ok {
		str, err := asString(val)
		if err != nil {
			return wrapSetting("tracing.service_name", err)
		}
		tracing.ServiceName = strings.TrimSpace(str)
	}
	if val, ok := section["sample_rate"]; ok {
		rate, err := asFloat64(val)
		if err != nil {
			return wrapSetting("tracing.sample_rate", err)
		}
		tracing.SampleRate = rate
	}
	if val, ok := section["insecure"]; ok {
		b, err := asBool(val)
		if err != nil {
			return wrapSetting("tracing.insecure", err)
		}
		tracing.Insecure = b
	}
	if val, ok := section["propagate"]; ok {
		b, err := asBool(val)
		if err != nil {
			return wrapSetting("tracing.propagate", err)
		}
		tracing.Propagate = b
	}

	return nil
}
