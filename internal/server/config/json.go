package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/capstone/internal/flagx"
	"github.com/dmitrijs2005/capstone/internal/timex"
)

// JSONConfig is the on-disk shape of a config file. Every field is optional;
// absent fields leave the current value untouched.
type JSONConfig struct {
	EndpointAddrGRPC       *string         `json:"endpoint_addr_grpc"`
	DatabaseDriver         *string         `json:"database_driver"`
	DatabaseDSN            *string         `json:"database_dsn"`
	PoolSize               *int            `json:"pool_size"`
	AcquireTimeout         *timex.Duration `json:"acquire_timeout"`
	SecretKey              *string         `json:"secret_key"`
	PrincipalTokenValidity *timex.Duration `json:"principal_token_validity"`
	LogLevel               *string         `json:"log_level"`
	HealthInterval         *timex.Duration `json:"health_interval"`
}

// parseJSON overlays values from the file named by -c/-config (or
// $CAPSTONE_CONFIG). No file means no changes.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.PoolSize != nil {
		config.PoolSize = *c.PoolSize
	}
	if c.AcquireTimeout != nil {
		config.AcquireTimeout = c.AcquireTimeout.Duration
	}
	if c.PrincipalTokenValidity != nil {
		config.PrincipalTokenValidity = c.PrincipalTokenValidity.Duration
	}
	if c.HealthInterval != nil {
		config.HealthInterval = c.HealthInterval.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
