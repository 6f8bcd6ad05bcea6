package config

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/spf13/viper"
)

type config struct {
	AppEnv   string
	Database struct {
		User     string
		Password string
		Addr     string
		Port     string
		DBName   string
		MaxConns int32
	}
	JwtTokenSecret string
	AppName        string
	Server         struct {
		Address string
	}
	Provider struct {
		BaseURL        string
		TimeoutSeconds int
		MinIntervalMs  int
		MaxAttempts    int
		BackoffBaseMs  int
		MaxJitterMs    int
	}
	Cache struct {
		Backend    string
		TTLSeconds int
		Size       int
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Email struct {
		SMTPHost    string
		SMTPPort    int
		Username    string
		Password    string
		FromAddress string
		AdminEmail  string
	}
	Cron struct {
		CredentialAuditSchedule string
	}
	Metrics struct {
		Enabled bool
		Path    string
	}
}

// C is config variable
var C config

// Application Environment name
const (
	Development = "development"
	Test        = "test"
	E2E         = "e2e"
	Staging     = "staging"
	Production  = "production"
)

// ReadConfigOption is a config option
type ReadConfigOption struct {
	AppEnv string
}

// ReadConfig configures config file
func ReadConfig(option ReadConfigOption) {
	Config := &C

	e := appEnv(option)

	switch e {
	case Test:
		setConfigName("config.test")
	case E2E:
		setConfigName("config.e2e")
	case Staging:
		setConfigName("config.staging")
	case Development:
		setConfigName("config")
	default:
		setConfigName("config.production")
	}

	viper.SetConfigType("yml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println(err)
		log.Fatalln(err)
	}

	if err := viper.Unmarshal(&Config); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	C.AppEnv = e

	if e != Test {
		redacted := C
		redacted.JwtTokenSecret = "***"
		redacted.Database.Password = "***"
		redacted.Email.Password = "***"
		redacted.Redis.Password = "***"
		spew.Dump(redacted)
	}
}

func appEnv(option ReadConfigOption) string {
	if option.AppEnv != "" {
		return option.AppEnv
	}
	if os.Getenv("APP_ENV") != "" {
		return os.Getenv("APP_ENV")
	}

	return Development
}

func rootDir() string {
	_, b, _, _ := runtime.Caller(0)
	d := path.Join(path.Dir(b))
	return filepath.Dir(d)
}

func setConfigName(name string) {
	viper.AddConfigPath(filepath.Join(rootDir(), "config"))
	viper.SetConfigName(name)
}
