package ldb

import "github.com/syndtr/goleveldb/leveldb/opt"

// Options returns a leveldb opt.Options struct for opening a database.
// It's defined as a variable for the sake of testing.
var Options = func(cacheSizeMiB int) *opt.Options {
	// Default leveldb options for a chain database. The block cache
	// is set to cacheSizeMiB and the write buffer to half of it.
	return &opt.Options{
		Compression:            opt.NoCompression,
		BlockCacheCapacity:     cacheSizeMiB * opt.MiB,
		WriteBuffer:            (cacheSizeMiB * opt.MiB) / 2,
		DisableSeeksCompaction: true,
	}
}
