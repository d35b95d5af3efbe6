// Package main provides the entry point for the maguard command-line tool.
// maguard talks to the account provider's mobile web endpoints to log in,
// enroll and remove a mobile authenticator, and generate login codes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/maguard-dev/maguard/internal/buildinfo"
	"github.com/maguard-dev/maguard/internal/cmd"
	"github.com/maguard-dev/maguard/internal/config"
	"github.com/maguard-dev/maguard/internal/logging"
	"github.com/maguard-dev/maguard/internal/util"
	log "github.com/sirupsen/logrus"
)

var (
	Version           = "dev"
	Commit            = "none"
	BuildDate         = "unknown"
	DefaultConfigPath = ""
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	fmt.Printf("maguard Version: %s, Commit: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	// Command-line flags selecting the operation mode.
	var login bool
	var setup bool
	var remove bool
	var code bool
	var checkPhone bool
	var validatePhone string
	var accountName string
	var passkey string
	var configPath string

	flag.BoolVar(&login, "login", false, "Log in and store the resulting session")
	flag.BoolVar(&setup, "setup", false, "Enroll a new mobile authenticator on the account")
	flag.BoolVar(&remove, "remove", false, "Remove the mobile authenticator from the account")
	flag.BoolVar(&code, "code", false, "Print the current login code for the account")
	flag.BoolVar(&checkPhone, "check-phone", false, "Check whether the account has a phone number")
	flag.StringVar(&validatePhone, "validate-phone", "", "Ask the provider to describe the given phone number")
	flag.StringVar(&accountName, "account", "", "Account name the command operates on")
	flag.StringVar(&passkey, "passkey", "", "Passkey unlocking encrypted account files")
	flag.StringVar(&configPath, "config", DefaultConfigPath, "Configure File Path")

	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Errorf("failed to get working directory: %v", err)
		return
	}

	// Load environment variables from .env if present.
	if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
		if !errors.Is(errLoad, os.ErrNotExist) {
			log.WithError(errLoad).Warn("failed to load .env file")
		}
	}

	// Determine and load the configuration file. A missing file falls back to
	// the built-in defaults.
	configFilePath := configPath
	if configFilePath == "" {
		configFilePath = filepath.Join(wd, "config.yaml")
	}
	cfg, err := config.LoadConfigOptional(configFilePath, configPath == "")
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return
	}

	if resolvedAuthDir, errResolve := util.ResolveAuthDir(cfg.AuthDir); errResolve != nil {
		log.Errorf("failed to resolve auth directory: %v", errResolve)
		return
	} else {
		cfg.AuthDir = resolvedAuthDir
	}

	if err = logging.ConfigureLogOutput(cfg); err != nil {
		log.Errorf("failed to configure log output: %v", err)
		return
	}

	log.Infof("maguard Version: %s, Commit: %s, BuiltAt: %s", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	opts := &cmd.Options{
		AccountName: accountName,
		Passkey:     passkey,
	}

	// Handle the different command modes based on the provided flags.
	switch {
	case login:
		err = cmd.DoLogin(cfg, opts)
	case setup:
		err = cmd.DoSetup(cfg, opts)
	case remove:
		err = cmd.DoRemove(cfg, opts)
	case code:
		err = cmd.DoCode(cfg, opts)
	case checkPhone:
		err = cmd.DoCheckPhone(cfg, opts)
	case validatePhone != "":
		err = cmd.DoValidatePhone(cfg, opts, validatePhone)
	default:
		flag.Usage()
		return
	}
	if err != nil {
		log.Errorf("command failed: %v", err)
		os.Exit(1)
	}
}
