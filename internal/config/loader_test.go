package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/pokedex/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":3000")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.BcryptCost, convey.ShouldEqual, 14)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("POKEDEX_ADDR", ":8080")
			_ = os.Setenv("POKEDEX_STORE_DRIVER", "MONGO")
			_ = os.Setenv("POKEDEX_MONGO_URI", "mongodb://db:27017")
			_ = os.Setenv("POKEDEX_BCRYPT_COST", "10")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMongo)
				convey.So(cfg.MongoURI, convey.ShouldEqual, "mongodb://db:27017")
				convey.So(cfg.BcryptCost, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
# local overrides
addr: ":9090"
log_level: debug
log_format: json
bcrypt_cost: 12
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("POKEDEX_CONFIG", tmpFile)
			_ = os.Setenv("POKEDEX_BCRYPT_COST", "8")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")     // From file
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug") // From file
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json") // From file
				convey.So(cfg.BcryptCost, convey.ShouldEqual, 8)     // Overridden by env
				convey.So(cfg.MongoDatabase, convey.ShouldEqual, "pokedex")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("POKEDEX_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("POKEDEX_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("POKEDEX_BCRYPT_COST", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given invalid configuration values", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		cases := []struct {
			want string
			env  map[string]string
		}{
			{"addr must not be empty", map[string]string{"POKEDEX_ADDR": " "}},
			{"bcrypt_cost must be between", map[string]string{"POKEDEX_BCRYPT_COST": "3"}},
			{"unknown store_driver", map[string]string{"POKEDEX_STORE_DRIVER": "redis"}},
			{"mongo_database must not be empty", map[string]string{"POKEDEX_STORE_DRIVER": "mongo", "POKEDEX_MONGO_DATABASE": " "}},
			{"mongo_timeout_ms must be positive", map[string]string{"POKEDEX_MONGO_TIMEOUT_MS": "0"}},
		}

		for _, tc := range cases {
			want := tc.want
			convey.Convey("When "+want, func() {
				for k, v := range tc.env {
					_ = os.Setenv(k, v)
				}

				cfg, err := config.Load(ctx)

				convey.Convey("Then it should return a validation error", func() {
					convey.So(cfg, convey.ShouldBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(err.Error(), convey.ShouldContainSubstring, want)
				})
			})
		}
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"POKEDEX_CONFIG",
		"POKEDEX_ADDR",
		"POKEDEX_LOG_LEVEL",
		"POKEDEX_LOG_FORMAT",
		"POKEDEX_STORE_DRIVER",
		"POKEDEX_MONGO_URI",
		"POKEDEX_MONGO_DATABASE",
		"POKEDEX_MONGO_TIMEOUT_MS",
		"POKEDEX_BCRYPT_COST",
		"POKEDEX_SHUTDOWN_TIMEOUT_MS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "pokedex-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
