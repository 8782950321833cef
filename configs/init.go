package configs

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Tconfigs struct {
	Service ServiceConfig `yaml:"service"`
	MongoDB MongoDBConfig `yaml:"mongodb"`
	Redis   RedisConfig   `yaml:"redis"`
	Authn   AuthnConfig   `yaml:"authn"`
	LLM     LLMConfig     `yaml:"llm"`
	Logs    LogsConfig    `yaml:"logs"`
	Secrets Secrets       `yaml:"secrets"`
}

var Configs Tconfigs

func Init(ConfigPath *string) {
	var configPath string
	if ConfigPath == nil || *ConfigPath == "" {
		// Find default config locations
		// 1. Check for ./configs.yaml (relative to working directory)
		// 2. Check for config in same directory as executable
		// 3. Check relative to this source file
		if _, err := os.Stat("./configs.yaml"); err == nil {
			configPath = "./configs.yaml"
		} else if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			candidatePath := filepath.Join(execDir, "configs.yaml")
			if _, err := os.Stat(candidatePath); err == nil {
				configPath = candidatePath
			} else {
				// Fallback to config relative to this source file
				_, b, _, _ := runtime.Caller(0)
				basePath := filepath.Dir(b)
				configPath = filepath.Join(basePath, "file", "configs.yaml")
			}
		} else {
			// Final fallback
			_, b, _, _ := runtime.Caller(0)
			basePath := filepath.Dir(b)
			configPath = filepath.Join(basePath, "file", "configs.yaml")
		}
	} else {
		configPath = *ConfigPath
	}

	load(configPath)
	InitLogger()
	resolveSecrets()
}

func load(ConfigsPath string) {
	yamlFile, err := os.ReadFile(ConfigsPath)
	if err != nil {
		// If Logger is not initialized yet, print to stderr
		if Logger == nil {
			os.Stderr.WriteString("Error reading config file: " + err.Error() + "\n")
		} else {
			Logger.Error("Error reading config file", zap.Error(err))
		}
		os.Exit(1)
	}

	err = yaml.Unmarshal(yamlFile, &Configs)
	if err != nil {
		if Logger == nil {
			os.Stderr.WriteString("Error parsing config file: " + err.Error() + "\n")
		} else {
			Logger.Error("Error parsing config file", zap.Error(err))
		}
		os.Exit(1)
	}
}

// resolveSecrets fills config values that arrive outside the yaml file:
// the store URI kept in a separate secrets file, and environment overrides
// for the LLM credentials and the bootstrap admin password.
func resolveSecrets() {
	if Configs.MongoDB.UriFile != "" {
		data, err := os.ReadFile(Configs.MongoDB.UriFile)
		if err != nil {
			Logger.Fatal("Error reading store uri file", zap.Error(err))
		}
		Configs.MongoDB.Uri = strings.TrimSpace(string(data))
	}
	if v := os.Getenv("STORE_URI"); v != "" {
		Configs.MongoDB.Uri = v
	}

	if Configs.Authn.DefaultAdminPassword == "" {
		Configs.Authn.DefaultAdminPassword = os.Getenv("DEFAULT_ADMIN_PASSWORD")
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		Configs.LLM.ApiKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		Configs.LLM.BaseUrl = v
	}
}
