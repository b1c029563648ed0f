package pipeline

// State is the lifecycle stage of a Pipeline.
//
//	Empty -> Ingesting -> Merging -> Finalized
//	                  \-> Discarded (cancelled or failed)
type State int

const (
	StateEmpty State = iota
	StateIngesting
	StateMerging
	StateFinalized
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateIngesting:
		return "ingesting"
	case StateMerging:
		return "merging"
	case StateFinalized:
		return "finalized"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}
