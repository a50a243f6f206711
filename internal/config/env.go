package config

import (
	"fmt"
	"os"
	"strconv"
)

// envVarPrefix is the prefix for all markln environment variables.
const envVarPrefix = "MARKLN_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

type envMapping struct {
	field string
	typ   envFieldType
}

var envMappings = map[string]envMapping{
	"THEME":        {field: "theme", typ: envTypeString},
	"WINDOW_MODE":  {field: "window_mode", typ: envTypeString},
	"AUTO_PREVIEW": {field: "auto_preview", typ: envTypeBool},
	"TAB_WIDTH":    {field: "tab_width", typ: envTypeInt},
	"LIST_INDENT":  {field: "list_indent", typ: envTypeInt},
	"TABLE_POLICY": {field: "table_policy", typ: envTypeString},
	"WRAP_CODE":    {field: "wrap_code", typ: envTypeBool},
	"LOG_LEVEL":    {field: "log_level", typ: envTypeString},
}

// LoadFromEnv applies MARKLN_* overrides to cfg.
func LoadFromEnv(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	for suffix, mapping := range envMappings {
		envVar := envVarPrefix + suffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvValue(cfg *Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

func setStringField(cfg *Config, field, value string) error {
	switch field {
	case "theme":
		cfg.Theme = value
	case "window_mode":
		cfg.WindowMode = value
	case "table_policy":
		cfg.TablePolicy = value
	case "log_level":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *Config, field string, value bool) error {
	switch field {
	case "auto_preview":
		cfg.AutoPreview = value
	case "wrap_code":
		cfg.WrapCode = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *Config, field string, value int) error {
	switch field {
	case "tab_width":
		cfg.TabWidth = value
	case "list_indent":
		cfg.ListIndent = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}
