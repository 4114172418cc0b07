package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"

	"github.com/mastercactapus/monitorman/board/serial"
	"gopkg.in/yaml.v2"
)

type appConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
	UI   string `yaml:"ui"`
	Addr string `yaml:"addr"`
	MQTT string `yaml:"mqtt"`
	Sim  bool   `yaml:"sim"`
	Log  string `yaml:"log"`
}

func defaultConfig() appConfig {
	return appConfig{
		Port: serial.DefaultPort,
		Baud: serial.DefaultBaud,
		UI:   "web",
		Addr: ":9092",
		Log:  "monitorman.log",
	}
}

func (c *appConfig) load(path string) error {
	log.Printf("loading config file: %s\n", path)
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not open config file: %w", err)
	}
	if err = yaml.UnmarshalStrict(yamlFile, c); err != nil {
		return fmt.Errorf("could not parse config file: %w", err)
	}
	return nil
}

func (c *appConfig) validate() error {
	switch c.UI {
	case "web", "tui":
	default:
		return fmt.Errorf("unknown ui %q (want web or tui)", c.UI)
	}
	if c.Baud <= 0 {
		return errors.New("baud must be positive")
	}
	if !c.Sim && c.Port == "" {
		return errors.New("no port given")
	}
	return nil
}

// parseArgs builds the config from defaults, then the optional config
// file, then any flags given explicitly.
func parseArgs(args []string) (appConfig, error) {
	cfg := defaultConfig()
	f := cfg

	fs := flag.NewFlagSet("monitorman", flag.ContinueOnError)
	fs.StringVar(&f.Port, "port", cfg.Port, "Serial port of the board.")
	fs.IntVar(&f.Baud, "baud", cfg.Baud, "Baud rate of the serial port.")
	fs.StringVar(&f.UI, "ui", cfg.UI, "Display to use: web or tui.")
	fs.StringVar(&f.Addr, "addr", cfg.Addr, "Address to bind the web display to.")
	fs.StringVar(&f.MQTT, "mqtt", cfg.MQTT, "MQTT broker URL to bridge state and commands to (e.g. mqtt://localhost:1883/monitorman).")
	fs.BoolVar(&f.Sim, "sim", cfg.Sim, "Use a simulated board instead of the serial port.")
	fs.StringVar(&f.Log, "log", cfg.Log, "Log file used while the terminal display is active.")
	path := fs.String("config", "", "Optional YAML config file.")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *path != "" {
		if err := cfg.load(*path); err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			cfg.Port = f.Port
		case "baud":
			cfg.Baud = f.Baud
		case "ui":
			cfg.UI = f.UI
		case "addr":
			cfg.Addr = f.Addr
		case "mqtt":
			cfg.MQTT = f.MQTT
		case "sim":
			cfg.Sim = f.Sim
		case "log":
			cfg.Log = f.Log
		}
	})

	return cfg, cfg.validate()
}
