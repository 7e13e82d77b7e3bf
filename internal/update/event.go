package update

// EventKind defines the type of a download progress event.
type EventKind int

const (
	Started EventKind = iota
	Progress
	Finished
)

// ProgressEvent is emitted by a Service while it downloads a release.
// TotalBytes is meaningful for Started (0 when unknown), ChunkBytes for Progress.
type ProgressEvent struct {
	Kind       EventKind
	TotalBytes int64
	ChunkBytes int64
}

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Progress:
		return "progress"
	case Finished:
		return "finished"
	default:
		panic("unreachable")
	}
}
