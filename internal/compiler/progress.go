package compiler

// Status is the state of one method in a Compile run.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "compiling"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "error"
	}
	return "unknown"
}

// Event reports a method changing state. Method is the qualified name.
type Event struct {
	Method string
	Status Status
}

// ProgressFunc receives events from worker goroutines; it must be safe for
// concurrent use.
type ProgressFunc func(Event)

func (f ProgressFunc) emit(method string, st Status) {
	if f != nil {
		f(Event{Method: method, Status: st})
	}
}

// ChannelSink forwards events to ch. The caller owns ch and closes it after
// Compile returns.
func ChannelSink(ch chan<- Event) ProgressFunc {
	return func(ev Event) { ch <- ev }
}
