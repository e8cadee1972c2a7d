package externalapi

// CellStatus is the status of a cell as seen from some point in the chain
type CellStatus uint8

const (
	// CellStatusUnknown means the cell either never existed, was already
	// consumed, or is not visible from the queried block
	CellStatusUnknown CellStatus = iota

	// CellStatusLive means the cell exists and can be consumed
	CellStatusLive
)

var cellStatusStrings = map[CellStatus]string{
	CellStatusUnknown: "Unknown",
	CellStatusLive:    "Live",
}

func (s CellStatus) String() string {
	return cellStatusStrings[s]
}

// CellState is the answer to "what is the state of this outpoint"
type CellState struct {
	Status CellStatus
	Output *DomainCellOutput
}

// NewLiveCellState returns a CellState for a live cell holding the given output
func NewLiveCellState(output *DomainCellOutput) CellState {
	return CellState{Status: CellStatusLive, Output: output}
}

// UnknownCellState returns a CellState for a cell that can't be consumed
func UnknownCellState() CellState {
	return CellState{Status: CellStatusUnknown}
}

// IsLive returns whether the cell can be consumed
func (s CellState) IsLive() bool {
	return s.Status == CellStatusLive && s.Output != nil
}

// ResolvedTransaction is a transaction together with the state of every
// cell its inputs reference, in input order
type ResolvedTransaction struct {
	Transaction *DomainTransaction
	InputCells  []CellState
}
