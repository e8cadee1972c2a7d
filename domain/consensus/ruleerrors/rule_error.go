package ruleerrors

import (
	"fmt"
	"strings"

	"github.com/cellnet/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrEmptyTransactions indicates the block does not have a least one
	// transaction.
	ErrEmptyTransactions = newRuleError("ErrEmptyTransactions")

	// ErrDuplicateTransactions indicates a block contains an identical transaction
	// (or at least two transactions which hash to the same value). A
	// valid block may only contain unique transactions.
	ErrDuplicateTransactions = newRuleError("ErrDuplicateTransactions")

	// ErrBadMerkleRoot indicates the calculated merkle root does not match
	// the expected value.
	ErrBadMerkleRoot = newRuleError("ErrBadMerkleRoot")

	// ErrCellbaseMissing indicates the first transaction of a block
	// extending the chain is not a cellbase.
	ErrCellbaseMissing = newRuleError("ErrCellbaseMissing")

	// ErrCellbaseInvalidQuantity indicates a block contains more than one
	// cellbase transaction.
	ErrCellbaseInvalidQuantity = newRuleError("ErrCellbaseInvalidQuantity")

	// ErrCellbaseInvalidPosition indicates the only cellbase of a block is
	// not its first transaction.
	ErrCellbaseInvalidPosition = newRuleError("ErrCellbaseInvalidPosition")

	// ErrCellbaseInvalidInput indicates the cellbase input is not the one
	// expected at the block's height.
	ErrCellbaseInvalidInput = newRuleError("ErrCellbaseInvalidInput")

	// ErrCellbaseInvalidReward indicates the cellbase pays out more than the
	// block reward plus the fees of the block's transactions.
	ErrCellbaseInvalidReward = newRuleError("ErrCellbaseInvalidReward")

	// ErrUncleInvalidCellbase indicates an uncle header doesn't commit to
	// the cellbase it was included with.
	ErrUncleInvalidCellbase = newRuleError("ErrUncleInvalidCellbase")

	// ErrUnexpectedHeight indicates a header's height isn't one above its
	// parent's.
	ErrUnexpectedHeight = newRuleError("ErrUnexpectedHeight")

	// ErrTimeTooOld indicates the header's timestamp is not after its
	// parent's.
	ErrTimeTooOld = newRuleError("ErrTimeTooOld")

	//ErrTimeTooMuchInTheFuture indicates that the block timestamp is too much in the future.
	ErrTimeTooMuchInTheFuture = newRuleError("ErrTimeTooMuchInTheFuture")

	// ErrUnexpectedDifficulty indicates specified bits do not align with
	// the expected value either because it doesn't match the calculated
	// value or because it is out of the valid range.
	ErrUnexpectedDifficulty = newRuleError("ErrUnexpectedDifficulty")

	// ErrInvalidPoW indicates that the block proof-of-work is invalid.
	ErrInvalidPoW = newRuleError("ErrInvalidPoW")

	// ErrNoTxInputs indicates a transaction does not have any inputs. A
	// valid transaction must have at least one input.
	ErrNoTxInputs = newRuleError("ErrNoTxInputs")

	// ErrNoTxOutputs indicates a transaction does not have any outputs.
	ErrNoTxOutputs = newRuleError("ErrNoTxOutputs")

	// ErrBadTxOutValue indicates an output value for a transaction is
	// invalid in some way such as being out of range.
	ErrBadTxOutValue = newRuleError("ErrBadTxOutValue")

	// ErrSpendTooHigh indicates a transaction is attempting to spend more
	// value than the sum of all of its inputs.
	ErrSpendTooHigh = newRuleError("ErrSpendTooHigh")

	// ErrScriptMalformed indicates a transaction script is malformed in
	// some way. For example, it has an unknown version or the wrong number
	// of arguments.
	ErrScriptMalformed = newRuleError("ErrScriptMalformed")

	// ErrScriptValidation indicates the result of executing transaction
	// script failed. The error covers any failure when executing scripts
	// such signature verification failures and lock mismatches.
	ErrScriptValidation = newRuleError("ErrScriptValidation")

	// ErrNotExtendingTip indicates an attempt to insert a block whose parent
	// is not the current tip of the chain.
	ErrNotExtendingTip = newRuleError("ErrNotExtendingTip")

	// ErrDoubleSpendInSameBlock indicates a block in which two inputs spend
	// the same cell.
	ErrDoubleSpendInSameBlock = newRuleError("ErrDoubleSpendInSameBlock")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// IsRuleError returns whether err is, or wraps, a RuleError
func IsRuleError(err error) bool {
	var ruleError RuleError
	return errors.As(err, &ruleError)
}

// ErrUnclesInvalidHash indicates the uncles hash in the header doesn't
// match the hash of the block's uncles.
type ErrUnclesInvalidHash struct {
	Expected *externalapi.DomainHash
	Actual   *externalapi.DomainHash
}

func (e ErrUnclesInvalidHash) Error() string {
	return fmt.Sprintf("expected uncles hash %s, but calculated %s", e.Expected, e.Actual)
}

// NewErrUnclesInvalidHash creates a new ErrUnclesInvalidHash error wrapped in a RuleError
func NewErrUnclesInvalidHash(expected, actual *externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrUnclesInvalidHash",
		inner:   ErrUnclesInvalidHash{Expected: expected, Actual: actual},
	})
}

// ErrUnclesOverLength indicates a block declares more uncles than allowed.
type ErrUnclesOverLength struct {
	Max    int
	Actual int
}

func (e ErrUnclesOverLength) Error() string {
	return fmt.Sprintf("block has %d uncles, while the maximum is %d", e.Actual, e.Max)
}

// NewErrUnclesOverLength creates a new ErrUnclesOverLength error wrapped in a RuleError
func NewErrUnclesOverLength(max, actual int) error {
	return errors.WithStack(RuleError{
		message: "ErrUnclesOverLength",
		inner:   ErrUnclesOverLength{Max: max, Actual: actual},
	})
}

// ErrUnclesInvalidDepth indicates an uncle whose height is outside the
// allowed range. Min and Max are heights, not depths.
type ErrUnclesInvalidDepth struct {
	Min    uint64
	Max    uint64
	Actual uint64
}

func (e ErrUnclesInvalidDepth) Error() string {
	return fmt.Sprintf("uncle height %d is out of the allowed range [%d, %d]", e.Actual, e.Min, e.Max)
}

// NewErrUnclesInvalidDepth creates a new ErrUnclesInvalidDepth error wrapped in a RuleError
func NewErrUnclesInvalidDepth(min, max, actual uint64) error {
	return errors.WithStack(RuleError{
		message: "ErrUnclesInvalidDepth",
		inner:   ErrUnclesInvalidDepth{Min: min, Max: max, Actual: actual},
	})
}

// ErrUncleDuplicate indicates the same uncle appears twice in a block.
type ErrUncleDuplicate struct {
	Hash *externalapi.DomainHash
}

func (e ErrUncleDuplicate) Error() string {
	return fmt.Sprintf("uncle %s is included more than once", e.Hash)
}

// NewErrUncleDuplicate creates a new ErrUncleDuplicate error wrapped in a RuleError
func NewErrUncleDuplicate(hash *externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrUncleDuplicate",
		inner:   ErrUncleDuplicate{Hash: hash},
	})
}

// ErrUncleInvalidInclude indicates an uncle that is an ancestor of the
// block, the block itself, or was already credited inside the lookback window.
type ErrUncleInvalidInclude struct {
	Hash *externalapi.DomainHash
}

func (e ErrUncleInvalidInclude) Error() string {
	return fmt.Sprintf("uncle %s can't be included", e.Hash)
}

// NewErrUncleInvalidInclude creates a new ErrUncleInvalidInclude error wrapped in a RuleError
func NewErrUncleInvalidInclude(hash *externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrUncleInvalidInclude",
		inner:   ErrUncleInvalidInclude{Hash: hash},
	})
}

// ErrMissingTxOut indicates a transaction output referenced by an input
// either does not exist or has already been spent.
type ErrMissingTxOut struct {
	MissingOutpoints []*externalapi.DomainOutpoint
}

func (e ErrMissingTxOut) Error() string {
	return fmt.Sprintf("missing the following outpoint: %v", e.MissingOutpoints)
}

// NewErrMissingTxOut Creates a new ErrMissingTxOut error wrapped in a RuleError
func NewErrMissingTxOut(missingOutpoints []*externalapi.DomainOutpoint) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingTxOut",
		inner:   ErrMissingTxOut{missingOutpoints},
	})
}

// ErrMissingParents indicates a block points to an unknown parent.
type ErrMissingParents struct {
	MissingParentHashes []*externalapi.DomainHash
}

func (e ErrMissingParents) Error() string {
	return fmt.Sprintf("missing the following parent hashes: %v", e.MissingParentHashes)
}

// NewErrMissingParents creates a new ErrMissingParents error wrapped in a RuleError
func NewErrMissingParents(missingParentHashes []*externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingParents",
		inner:   ErrMissingParents{missingParentHashes},
	})
}

// InvalidTransaction is a struct containing the position of an invalid
// transaction among the block's non-cellbase transactions, and the error
// explaining why it's invalid.
type InvalidTransaction struct {
	Index int
	Error error
}

func (invalid InvalidTransaction) String() string {
	return fmt.Sprintf("(%d: %s)", invalid.Index, invalid.Error)
}

// ErrInvalidTransactionsInBlock indicates that some transactions in a block are invalid
type ErrInvalidTransactionsInBlock struct {
	InvalidTransactions []InvalidTransaction
}

func (e ErrInvalidTransactionsInBlock) Error() string {
	invalidTransactionStrings := make([]string, len(e.InvalidTransactions))
	for i, invalidTransaction := range e.InvalidTransactions {
		invalidTransactionStrings[i] = invalidTransaction.String()
	}
	return "[" + strings.Join(invalidTransactionStrings, ", ") + "]"
}

// Indexes returns the indexes of the invalid transactions, in reported order
func (e ErrInvalidTransactionsInBlock) Indexes() []int {
	indexes := make([]int, len(e.InvalidTransactions))
	for i, invalidTransaction := range e.InvalidTransactions {
		indexes[i] = invalidTransaction.Index
	}
	return indexes
}

// NewErrInvalidTransactionsInBlock Creates a new ErrInvalidTransactionsInBlock error wrapped in a RuleError
func NewErrInvalidTransactionsInBlock(invalidTransactions []InvalidTransaction) error {
	return errors.WithStack(RuleError{
		message: "ErrInvalidTransactionsInBlock",
		inner:   ErrInvalidTransactionsInBlock{invalidTransactions},
	})
}
