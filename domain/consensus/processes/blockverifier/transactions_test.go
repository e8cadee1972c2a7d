package blockverifier

import (
	"sort"
	"strings"
	"testing"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/cellnet/celld/domain/consensus/processes/transactionverifier"
	"github.com/cellnet/celld/domain/consensus/ruleerrors"
	"github.com/cellnet/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnet/celld/domain/consensus/utils/hashset"
	"github.com/cellnet/celld/domain/consensus/utils/testutils"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

func TestCellResolver(t *testing.T) {
	chain := newTestChain(t, 2)
	canonicalOutpoint := chain.tipCellbaseOutpoint()

	tx := testutils.NewTransaction([]*externalapi.DomainOutpoint{canonicalOutpoint},
		[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(3), testutils.AlwaysSuccessOutput(4)})
	txHash := consensushashing.TransactionHash(tx)
	resolver := NewCellResolver([]*externalapi.DomainTransaction{tx}, chainCellProvider{chain: chain})

	// Outputs of the block itself are visible as of any block
	for _, asOf := range []*externalapi.DomainHash{&chain.tip.Header.ParentHash, externalapi.NewZeroHash()} {
		cell, err := resolver.CellAt(externalapi.NewDomainOutpoint(txHash, 1), asOf)
		if err != nil {
			t.Fatalf("CellAt: %+v", err)
		}
		if !cell.IsLive() || !cell.Output.Equal(tx.Outputs[1]) {
			t.Fatalf("unexpected same-block cell state: %s", spew.Sdump(cell))
		}
	}
	if chain.asOfHashes.Length() != 0 {
		t.Fatalf("same-block lookups were delegated to the chain")
	}

	cell, err := resolver.CellAt(externalapi.NewDomainOutpoint(txHash, 2), externalapi.NewZeroHash())
	if err != nil {
		t.Fatalf("CellAt: %+v", err)
	}
	if cell.IsLive() {
		t.Fatalf("an out of range same-block output resolved to a live cell")
	}

	cell, err = resolver.CellAt(canonicalOutpoint, &chain.tip.Header.ParentHash)
	if err != nil {
		t.Fatalf("CellAt: %+v", err)
	}
	if !cell.IsLive() || cell.Output.Capacity != testBlockReward {
		t.Fatalf("unexpected canonical cell state: %s", spew.Sdump(cell))
	}
	if !chain.asOfHashes.Contains(&chain.tip.Header.ParentHash) {
		t.Fatalf("canonical lookup was not delegated as of the requested block")
	}

	chain.cellErr = errors.New("store failure")
	_, err = resolver.ResolveTransaction(tx, &chain.tip.Header.ParentHash)
	if !errors.Is(err, chain.cellErr) {
		t.Fatalf("expected the store failure but got: %v", err)
	}
}

func TestTransactionsVerifierSameBlockSpend(t *testing.T) {
	chain := newTestChain(t, 2)

	parentTx := testutils.NewTransaction([]*externalapi.DomainOutpoint{chain.tipCellbaseOutpoint()},
		[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(600), testutils.AlwaysSuccessOutput(400)})
	parentTxHash := consensushashing.TransactionHash(parentTx)
	childTx := testutils.NewTransaction([]*externalapi.DomainOutpoint{externalapi.NewDomainOutpoint(parentTxHash, 1)},
		[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(400)})

	block := chain.buildBlock([]*externalapi.DomainTransaction{parentTx, childTx}, nil)
	err := NewTransactionsVerifier(block, chain, transactionverifier.New()).Verify()
	if err != nil {
		t.Fatalf("Verify: %+v", err)
	}

	// Lookups are made as of the block's parent
	if chain.asOfHashes.Length() != 1 || !chain.asOfHashes.Contains(&block.Header.ParentHash) {
		t.Fatalf("unexpected lookup hashes: %s", chain.asOfHashes)
	}

	// The same-block output isn't canonical
	if _, ok := chain.cells[*externalapi.NewDomainOutpoint(parentTxHash, 1)]; ok {
		t.Fatalf("the same-block output is unexpectedly part of the chain")
	}
}

func TestTransactionsVerifierMissingSameBlockOutput(t *testing.T) {
	chain := newTestChain(t, 2)

	parentTx := testutils.NewTransaction([]*externalapi.DomainOutpoint{chain.tipCellbaseOutpoint()},
		[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(600)})
	parentTxHash := consensushashing.TransactionHash(parentTx)
	childTx := testutils.NewTransaction([]*externalapi.DomainOutpoint{externalapi.NewDomainOutpoint(parentTxHash, 1)},
		[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(400)})

	block := chain.buildBlock([]*externalapi.DomainTransaction{parentTx, childTx}, nil)
	err := NewTransactionsVerifier(block, chain, transactionverifier.New()).Verify()

	var invalidTransactionsErr ruleerrors.ErrInvalidTransactionsInBlock
	if !errors.As(err, &invalidTransactionsErr) {
		t.Fatalf("expected ErrInvalidTransactionsInBlock but got: %v", err)
	}
	if len(invalidTransactionsErr.InvalidTransactions) != 1 || invalidTransactionsErr.InvalidTransactions[0].Index != 1 {
		t.Fatalf("unexpected invalid transactions: %s", invalidTransactionsErr)
	}
	var missingTxOutErr ruleerrors.ErrMissingTxOut
	if !errors.As(invalidTransactionsErr.InvalidTransactions[0].Error, &missingTxOutErr) {
		t.Fatalf("expected ErrMissingTxOut but got: %v", invalidTransactionsErr.InvalidTransactions[0].Error)
	}
}

func TestTransactionsVerifierReportsAllInvalidTransactions(t *testing.T) {
	const transactionCount = 100

	chain := newTestChain(t, 2)
	transactions := make([]*externalapi.DomainTransaction, transactionCount)
	for i := range transactions {
		transactions[i] = testutils.NewTransaction([]*externalapi.DomainOutpoint{chain.tipCellbaseOutpoint()},
			[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(uint64(i))})
	}
	block := chain.buildBlock(transactions, nil)

	invalid := hashset.New()
	var expectedIndexes []int
	for i, tx := range transactions {
		if i%7 == 3 || i == transactionCount-1 {
			invalid.Add(consensushashing.TransactionHash(tx))
			expectedIndexes = append(expectedIndexes, i)
		}
	}

	for run := 0; run < 5; run++ {
		err := NewTransactionsVerifier(block, chain, &stubTransactionVerifier{invalid: invalid}).Verify()
		var invalidTransactionsErr ruleerrors.ErrInvalidTransactionsInBlock
		if !errors.As(err, &invalidTransactionsErr) {
			t.Fatalf("expected ErrInvalidTransactionsInBlock but got: %v", err)
		}

		indexes := invalidTransactionsErr.Indexes()
		if !sort.IntsAreSorted(indexes) {
			t.Fatalf("invalid transaction indexes are not sorted: %v", indexes)
		}
		if len(indexes) != len(expectedIndexes) {
			t.Fatalf("expected invalid indexes %v but got %v", expectedIndexes, indexes)
		}
		for i := range indexes {
			if indexes[i] != expectedIndexes[i] {
				t.Fatalf("expected invalid indexes %v but got %v", expectedIndexes, indexes)
			}
			if !errors.Is(invalidTransactionsErr.InvalidTransactions[i].Error, ruleerrors.ErrScriptValidation) {
				t.Fatalf("unexpected error for transaction %d: %v",
					indexes[i], invalidTransactionsErr.InvalidTransactions[i].Error)
			}
		}
	}
}

func TestTransactionsVerifierSkipsCellbase(t *testing.T) {
	chain := newTestChain(t, 2)
	block := chain.buildBlock(nil, nil)

	// The cellbase would fail the real verifier, it has no live input
	err := NewTransactionsVerifier(block, chain, transactionverifier.New()).Verify()
	if err != nil {
		t.Fatalf("Verify: %+v", err)
	}
	if chain.asOfHashes.Length() != 0 {
		t.Fatalf("the cellbase inputs were resolved")
	}
}

func TestTransactionsVerifierStoreFailure(t *testing.T) {
	chain := newTestChain(t, 2)
	transactions := []*externalapi.DomainTransaction{
		testutils.NewTransaction([]*externalapi.DomainOutpoint{chain.tipCellbaseOutpoint()},
			[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(1)}),
		testutils.NewTransaction([]*externalapi.DomainOutpoint{chain.tipCellbaseOutpoint()},
			[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(2)}),
	}
	block := chain.buildBlock(transactions, nil)
	chain.cellErr = errors.New("store failure")

	invalid := hashset.NewFromSlice(consensushashing.TransactionHash(transactions[0]))
	err := NewTransactionsVerifier(block, chain, &stubTransactionVerifier{invalid: invalid}).Verify()
	if !errors.Is(err, chain.cellErr) {
		t.Fatalf("expected the store failure but got: %v", err)
	}
	if ruleerrors.IsRuleError(err) {
		t.Fatalf("a store failure was reported as a rule error: %v", err)
	}
}

// panickingTransactionVerifier panics on the transactions in panicking
type panickingTransactionVerifier struct {
	panicking hashset.HashSet
}

func (v *panickingTransactionVerifier) VerifyTransaction(resolved *externalapi.ResolvedTransaction) error {
	if v.panicking.Contains(consensushashing.TransactionHash(resolved.Transaction)) {
		panic("malformed transaction")
	}
	return nil
}

func TestTransactionsVerifierRecoversVerifierPanic(t *testing.T) {
	chain := newTestChain(t, 2)
	transactions := []*externalapi.DomainTransaction{
		testutils.NewTransaction([]*externalapi.DomainOutpoint{chain.tipCellbaseOutpoint()},
			[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(1)}),
		testutils.NewTransaction([]*externalapi.DomainOutpoint{chain.tipCellbaseOutpoint()},
			[]*externalapi.DomainCellOutput{testutils.AlwaysSuccessOutput(2)}),
	}
	block := chain.buildBlock(transactions, nil)

	verifier := &panickingTransactionVerifier{panicking: hashset.NewFromSlice(consensushashing.TransactionHash(transactions[1]))}
	err := NewTransactionsVerifier(block, chain, verifier).Verify()
	if err == nil {
		t.Fatalf("expected a block with a panicking transaction to be rejected")
	}
	if !strings.Contains(err.Error(), consensushashing.TransactionHash(transactions[1]).String()) {
		t.Fatalf("expected the error to name the panicking transaction, got: %v", err)
	}
}

func TestHeaderResolverWrapper(t *testing.T) {
	chain := newTestChain(t, 2)
	block := chain.buildBlock(nil, nil)

	resolver, err := NewHeaderResolverWrapper(block.Header, chain)
	if err != nil {
		t.Fatalf("NewHeaderResolverWrapper: %+v", err)
	}
	if resolver.Header() != block.Header || !resolver.Parent().Equal(chain.tip.Header) {
		t.Fatalf("unexpected resolved headers")
	}
	bits, err := resolver.ExpectedBits()
	if err != nil {
		t.Fatalf("ExpectedBits: %+v", err)
	}
	if bits != chain.bits {
		t.Fatalf("expected bits %x but got %x", chain.bits, bits)
	}

	orphanHeader := block.Header.Clone()
	orphanHeader.ParentHash = *externalapi.NewZeroHash()
	resolver, err = NewHeaderResolverWrapper(orphanHeader, chain)
	if err != nil {
		t.Fatalf("NewHeaderResolverWrapper: %+v", err)
	}
	if resolver.Parent() != nil {
		t.Fatalf("expected an unknown parent")
	}
	_, err = resolver.ExpectedBits()
	var missingParentsErr ruleerrors.ErrMissingParents
	if !errors.As(err, &missingParentsErr) {
		t.Fatalf("expected ErrMissingParents but got: %v", err)
	}
}
