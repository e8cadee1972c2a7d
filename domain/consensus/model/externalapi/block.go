package externalapi

// DomainBlock represents a block: a header, the committed transactions
// and the uncles it credits.
type DomainBlock struct {
	Header       *DomainBlockHeader
	Transactions []*DomainTransaction
	Uncles       []*DomainUncleBlock
}

// Height returns the height of the block as declared by its header
func (block *DomainBlock) Height() uint64 {
	return block.Header.Height
}

// Clone returns a clone of DomainBlock
func (block *DomainBlock) Clone() *DomainBlock {
	transactionClone := make([]*DomainTransaction, len(block.Transactions))
	for i, tx := range block.Transactions {
		transactionClone[i] = tx.Clone()
	}

	unclesClone := make([]*DomainUncleBlock, len(block.Uncles))
	for i, uncle := range block.Uncles {
		unclesClone[i] = uncle.Clone()
	}

	return &DomainBlock{
		Header:       block.Header.Clone(),
		Transactions: transactionClone,
		Uncles:       unclesClone,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainBlock{&DomainBlockHeader{}, []*DomainTransaction{}, []*DomainUncleBlock{}}

// Equal returns whether block equals to other
func (block *DomainBlock) Equal(other *DomainBlock) bool {
	if block == nil || other == nil {
		return block == other
	}

	if len(block.Transactions) != len(other.Transactions) || len(block.Uncles) != len(other.Uncles) {
		return false
	}

	if !block.Header.Equal(other.Header) {
		return false
	}

	for i, tx := range block.Transactions {
		if !tx.Equal(other.Transactions[i]) {
			return false
		}
	}

	for i, uncle := range block.Uncles {
		if !uncle.Equal(other.Uncles[i]) {
			return false
		}
	}

	return true
}

// DomainUncleBlock is a sibling of some ancestor that is credited by a
// later block. It is never part of the canonical chain.
type DomainUncleBlock struct {
	Header   *DomainBlockHeader
	Cellbase *DomainTransaction
}

// Clone returns a clone of DomainUncleBlock
func (uncle *DomainUncleBlock) Clone() *DomainUncleBlock {
	return &DomainUncleBlock{
		Header:   uncle.Header.Clone(),
		Cellbase: uncle.Cellbase.Clone(),
	}
}

// Equal returns whether uncle equals to other
func (uncle *DomainUncleBlock) Equal(other *DomainUncleBlock) bool {
	if uncle == nil || other == nil {
		return uncle == other
	}
	return uncle.Header.Equal(other.Header) && uncle.Cellbase.Equal(other.Cellbase)
}

// DomainBlockHeader represents the header part of a block
type DomainBlockHeader struct {
	Version            uint16
	ParentHash         DomainHash
	Height             uint64
	TimeInMilliseconds int64
	Bits               uint32
	Nonce              uint64
	TransactionsRoot   DomainHash
	UnclesHash         DomainHash
	CellbaseHash       DomainHash
}

// Clone returns a clone of DomainBlockHeader
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	headerClone := *header
	return &headerClone
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = &DomainBlockHeader{0, DomainHash{}, 0, 0, 0, 0,
	DomainHash{}, DomainHash{}, DomainHash{}}

// Equal returns whether header equals to other
func (header *DomainBlockHeader) Equal(other *DomainBlockHeader) bool {
	if header == nil || other == nil {
		return header == other
	}

	return *header == *other
}
