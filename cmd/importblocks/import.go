package main

import (
	"bufio"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"github.com/cellnet/celld/domain/consensus"
	"github.com/cellnet/celld/domain/consensus/database/serialization"
	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/infrastructure/db/database"
	"github.com/cellnet/celld/util/mstime"
	"github.com/pkg/errors"
)

// maxLineSize bounds a single hex encoded block
const maxLineSize = 64 * 1024 * 1024

var errInterrupted = errors.New("import interrupted")

// importResults houses the stats and result of an import operation.
type importResults struct {
	blocksProcessed int64
	blocksImported  int64
}

// blockImporter feeds hex encoded blocks, one per line, into a Consensus
type blockImporter struct {
	consensus        consensus.Consensus
	scanner          *bufio.Scanner
	progressInterval time.Duration

	lineNumber        int
	results           importResults
	receivedLogBlocks int64
	receivedLogTx     int64
	lastHeight        uint64
	lastBlockTime     int64
	lastLogTime       time.Time
}

func newBlockImporter(c consensus.Consensus, r io.Reader, progressInterval time.Duration) *blockImporter {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &blockImporter{
		consensus:        c,
		scanner:          scanner,
		progressInterval: progressInterval,
		lastLogTime:      time.Now(),
	}
}

// readBlock returns the next block in the input, or nil once it is
// exhausted. Blank lines and lines starting with '#' are skipped.
func (bi *blockImporter) readBlock() (*externalapi.DomainBlock, error) {
	for bi.scanner.Scan() {
		bi.lineNumber++
		line := strings.TrimSpace(bi.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		blockBytes, err := hex.DecodeString(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d is not valid hex", bi.lineNumber)
		}
		block, err := serialization.DeserializeBlock(blockBytes)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to deserialize the block at line %d", bi.lineNumber)
		}
		return block, nil
	}
	return nil, errors.WithStack(bi.scanner.Err())
}

// processBlock inserts block unless it's already part of the chain, and
// reports whether it was inserted
func (bi *blockImporter) processBlock(block *externalapi.DomainBlock) (bool, error) {
	blockHash := consensushashing.BlockHash(block)
	_, err := bi.consensus.GetBlockHeader(blockHash)
	if err == nil {
		log.Debugf("Skipping block %s which is already in the chain", blockHash)
		return false, nil
	}
	if !database.IsNotFoundError(err) {
		return false, err
	}

	err = bi.consensus.ValidateAndInsertBlock(block)
	if err != nil {
		return false, errors.Wrapf(err, "block %s at line %d was rejected", blockHash, bi.lineNumber)
	}
	return true, nil
}

// Import reads and inserts blocks until the input is exhausted, a block is
// rejected or interrupt is closed
func (bi *blockImporter) Import(interrupt <-chan struct{}) (*importResults, error) {
	for {
		select {
		case <-interrupt:
			return &bi.results, errInterrupted
		default:
		}

		block, err := bi.readBlock()
		if err != nil {
			return &bi.results, err
		}
		if block == nil {
			break
		}

		bi.results.blocksProcessed++
		imported, err := bi.processBlock(block)
		if err != nil {
			return &bi.results, err
		}
		if imported {
			bi.results.blocksImported++
			bi.logProgress(block)
		}
	}

	return &bi.results, nil
}

// logProgress logs block progress as an information message. In order to
// prevent spam, it limits logging to one message every progressInterval
// with duration and totals included.
func (bi *blockImporter) logProgress(block *externalapi.DomainBlock) {
	bi.receivedLogBlocks++
	bi.receivedLogTx += int64(len(block.Transactions))
	bi.lastHeight = block.Header.Height
	bi.lastBlockTime = block.Header.TimeInMilliseconds

	if bi.progressInterval == 0 {
		return
	}
	now := time.Now()
	duration := now.Sub(bi.lastLogTime)
	if duration < bi.progressInterval {
		return
	}

	// Truncate the duration to 10s of milliseconds.
	tDuration := duration.Round(10 * time.Millisecond)

	// Log information about new block height.
	blockStr := "blocks"
	if bi.receivedLogBlocks == 1 {
		blockStr = "block"
	}
	txStr := "transactions"
	if bi.receivedLogTx == 1 {
		txStr = "transaction"
	}
	log.Infof("Processed %d %s in the last %s (%d %s, height %d, %s)",
		bi.receivedLogBlocks, blockStr, tDuration, bi.receivedLogTx,
		txStr, bi.lastHeight, mstime.UnixMilliToTime(bi.lastBlockTime))

	bi.receivedLogBlocks = 0
	bi.receivedLogTx = 0
	bi.lastLogTime = now
}
