package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/DmytroLysachenko/safe-vault/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. The token validity is carried as an integer number of
// minutes, matching the flag form.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr       string `json:"endpoint_addr"`
	DatabaseDSN        string `json:"database_dsn"`
	SecretKey          string `json:"secret_key"`
	TokenIssuer        string `json:"token_issuer"`
	TokenAudience      string `json:"token_audience"`
	AccessTokenMinutes int    `json:"access_token_minutes"`
	BcryptCost         int    `json:"bcrypt_cost"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenIssuer != "" {
		config.TokenIssuer = c.TokenIssuer
	}
	if c.TokenAudience != "" {
		config.TokenAudience = c.TokenAudience
	}
	if c.AccessTokenMinutes != 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenMinutes) * time.Minute
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
}
