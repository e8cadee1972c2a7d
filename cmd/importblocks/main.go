package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cellnet/celld/domain/consensus"
	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/cellnet/celld/infrastructure/db/database/badgerdb"
	"github.com/cellnet/celld/infrastructure/db/database/ldb"
	"github.com/cellnet/celld/infrastructure/logger"
	"github.com/cellnet/celld/infrastructure/os/signal"
	"github.com/cellnet/celld/util/panics"
	"github.com/cellnet/celld/util/profiling"
	"github.com/cellnet/celld/version"
	"github.com/pkg/errors"
)

const (
	logFileName       = "importblocks.log"
	errLogFileName    = "importblocks_err.log"
	levelDBCacheInMiB = 256
)

func main() {
	defer panics.HandlePanic(log, "main", nil)
	interrupt := signal.InterruptListener()

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	logger.InitLog(filepath.Join(cfg.LogDir, logFileName), filepath.Join(cfg.LogDir, errLogFileName))
	err = logger.ParseAndSetLogLevels(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting log levels: %s\n", err)
		os.Exit(1)
	}

	err = importBlocks(cfg, interrupt)
	if err != nil {
		log.Errorf("%+v", err)
		logger.BackendLog.Close()
		os.Exit(1)
	}
	logger.BackendLog.Close()
}

func importBlocks(cfg *ConfigFlags, interrupt <-chan struct{}) error {
	log.Infof("Version %s", version.Version())

	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	log.Infof("Loading %s database from '%s'", cfg.DbType, cfg.DataDir)
	db, err := openDatabase(cfg.DbType, cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		err := db.Close()
		if err != nil {
			log.Errorf("Failed to close the database: %s", err)
		}
	}()

	c, err := consensus.New(cfg.NetParams(), db)
	if err != nil {
		return err
	}

	inFile, err := os.Open(cfg.InFile)
	if err != nil {
		return errors.WithStack(err)
	}
	defer inFile.Close()

	log.Infof("Importing blocks from %s", cfg.InFile)
	importer := newBlockImporter(c, inFile, time.Duration(cfg.Progress)*time.Second)

	type importResult struct {
		results *importResults
		err     error
	}
	resultChan := make(chan importResult, 1)
	spawn("importBlocks-import", func() {
		results, err := importer.Import(interrupt)
		resultChan <- importResult{results: results, err: err}
	})
	result := <-resultChan

	log.Infof("Processed a total of %d blocks (%d imported, %d already known)",
		result.results.blocksProcessed, result.results.blocksImported,
		result.results.blocksProcessed-result.results.blocksImported)
	if errors.Is(result.err, errInterrupted) {
		log.Warnf("Import was interrupted before the end of %s", cfg.InFile)
		return nil
	}
	return result.err
}

func openDatabase(dbType string, path string) (database.Database, error) {
	switch dbType {
	case dbTypeLevelDB:
		return ldb.NewLevelDB(path, levelDBCacheInMiB)
	case dbTypeBadger:
		return badgerdb.NewBadgerDB(path)
	default:
		return nil, errors.Errorf("unknown database type %s", dbType)
	}
}
