package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host      string    `koanf:"host"`
	Port      int       `koanf:"port" validate:"gte=1,lte=65535"`
	Planner   Planner   `koanf:"planner"`
	Scheduler Scheduler `koanf:"scheduler"`
	Google    Google    `koanf:"google"`
	Database  Database  `koanf:"db"`
}

// Planner holds the user facing defaults of the planner. It is read only after Load.
type Planner struct {
	DefaultDeadlineHour   int    `koanf:"defaultdeadlinehour" validate:"gte=0,lte=23"`
	DefaultDeadlineMinute int    `koanf:"defaultdeadlineminute" validate:"gte=0,lte=59"`
	DefaultCategory       string `koanf:"defaultcategory" validate:"oneof=regular ddl leisure"`
	ReminderLeadMinutes   int    `koanf:"reminderleadminutes" validate:"gte=0,lte=120"`
	// WeekStartsMonday only affects presentation, ISO weeks always start on Monday.
	WeekStartsMonday bool `koanf:"weekstartsmonday"`
}

type Scheduler struct {
	Interval time.Duration `koanf:"interval" validate:"gte=1s"`
}

type Google struct {
	Enabled      bool   `koanf:"enabled"`
	ClientId     string `koanf:"clientid" validate:"required_if=Enabled true"`
	ClientSecret string `koanf:"clientsecret" validate:"required_if=Enabled true"`
	RefreshToken string `koanf:"refreshtoken" validate:"required_if=Enabled true"`
	CalendarId   string `koanf:"calendarid"`
}

type Database struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres"`
	Path   string `koanf:"path" validate:"required_if=Driver sqlite"`
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

var validate = validator.New()

// Defaults returns the configuration used when neither a file nor an environment variable overrides a value.
func Defaults() Application {
	return Application{
		Host: "http://localhost:8181",
		Port: 8181,
		Planner: Planner{
			DefaultDeadlineHour:   20,
			DefaultDeadlineMinute: 0,
			DefaultCategory:       "regular",
			ReminderLeadMinutes:   30,
			WeekStartsMonday:      true,
		},
		Scheduler: Scheduler{
			Interval: time.Minute,
		},
		Google: Google{
			CalendarId: "primary",
		},
		Database: Database{
			Driver: "sqlite",
			Path:   "./data/focusweek.db",
			Host:   "localhost",
			Port:   5432,
			User:   "focusweek",
			Pass:   "",
			Name:   "focusweek",
			Schema: "focusweek",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "FOCUSWEEK_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "FOCUSWEEK_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	if err := Validate(app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Validate checks value ranges of the whole configuration.
func Validate(app Application) error {
	if err := validate.Struct(app); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
