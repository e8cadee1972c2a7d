// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cellnet/celld/infrastructure/config"
	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	dbTypeLevelDB = "leveldb"
	dbTypeBadger  = "badger"

	defaultDbType   = dbTypeLevelDB
	defaultDataFile = "blocks.hex"
	defaultProgress = 10
	defaultLogLevel = "info"
	defaultEnvFile  = ".env"

	envFileEnvVar = "CELLD_ENVFILE"
)

var (
	celldHomeDir   = defaultHomeDir()
	defaultDataDir = filepath.Join(celldHomeDir, "data")
	defaultLogDir  = filepath.Join(celldHomeDir, "logs")
	knownDbTypes   = []string{dbTypeLevelDB, dbTypeBadger}
)

// ConfigFlags defines the configuration options for importblocks.
//
// See loadConfig for details on the configuration load process.
type ConfigFlags struct {
	DataDir  string `short:"b" long:"datadir" env:"CELLD_DATADIR" description:"Location of the celld data directory"`
	DbType   string `long:"dbtype" env:"CELLD_DBTYPE" description:"Database backend to use for the chain (leveldb or badger)"`
	InFile   string `short:"i" long:"infile" env:"CELLD_INFILE" description:"File containing the block(s), one hex encoded block per line"`
	Progress int    `short:"p" long:"progress" description:"Show a progress message each time this number of seconds have passed -- Use 0 to disable progress announcements"`
	LogDir   string `long:"logdir" env:"CELLD_LOGDIR" description:"Directory to log output"`
	LogLevel string `short:"d" long:"loglevel" env:"CELLD_LOGLEVEL" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	Profile  string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65535"`
	config.NetworkFlags
}

func defaultHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".celld"
	}
	return filepath.Join(homeDir, ".celld")
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// validDbType returns whether or not dbType is a supported database type.
func validDbType(dbType string) bool {
	for _, knownType := range knownDbTypes {
		if dbType == knownType {
			return true
		}
	}

	return false
}

// loadEnvFile loads the env file named by CELLD_ENVFILE, or .env in the
// working directory, if it exists. Variables already set in the environment
// take precedence over the ones in the file.
func loadEnvFile() error {
	envFile := os.Getenv(envFileEnvVar)
	if envFile == "" {
		envFile = defaultEnvFile
		if !fileExists(envFile) {
			return nil
		}
	}
	err := godotenv.Load(envFile)
	if err != nil {
		return errors.Wrapf(err, "couldn't load env file %s", envFile)
	}
	return nil
}

// loadConfig initializes and parses the config using, in increasing order
// of precedence, the defaults, the env file, the environment and the
// command line options.
func loadConfig(args []string) (*ConfigFlags, error) {
	err := loadEnvFile()
	if err != nil {
		return nil, err
	}

	cfg := &ConfigFlags{
		DataDir:  defaultDataDir,
		DbType:   defaultDbType,
		InFile:   defaultDataFile,
		Progress: defaultProgress,
		LogDir:   defaultLogDir,
		LogLevel: defaultLogLevel,
	}

	parser := flags.NewParser(cfg, flags.Default)
	_, err = parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); !ok || flagsErr.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, err
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	if !validDbType(cfg.DbType) {
		str := "%s: The specified database type [%s] is invalid -- " +
			"supported types %s"
		err := errors.Errorf(str, "loadConfig", cfg.DbType, strings.Join(knownDbTypes, ", "))
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, err
	}

	if cfg.Progress < 0 {
		return nil, errors.Errorf("%s: progress interval must not be negative", "loadConfig")
	}

	// Append the network type to the data directory so it is "namespaced"
	// per network. Every network keeps its own chain.
	cfg.DataDir = filepath.Join(cfg.DataDir, cfg.NetParams().Name, cfg.DbType)

	if !fileExists(cfg.InFile) {
		str := "%s: The specified block file [%s] does not exist"
		err := errors.Errorf(str, "loadConfig", cfg.InFile)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, err
	}

	return cfg, nil
}
