package motion

// PhaseEvent is emitted by a staged move whenever the controller enters a
// new motion state.
type PhaseEvent struct {
	State    MotionState `json:"state"`
	Sample   int         `json:"sample"`
	Time     float64     `json:"time"`
	Position float64     `json:"position"`
	Rotation float64     `json:"rotation"`
	Target   float64     `json:"target"`
}

type Observer interface {
	OnPhase(ev PhaseEvent)
}

type ObserverFunc func(ev PhaseEvent)

func (f ObserverFunc) OnPhase(ev PhaseEvent) { f(ev) }

// ChanObserver forwards events to a buffered channel. Events are dropped
// when the buffer is full so a slow reader never stalls a move.
type ChanObserver struct {
	C chan PhaseEvent
}

func NewChanObserver(buffer int) *ChanObserver {
	return &ChanObserver{C: make(chan PhaseEvent, buffer)}
}

func (o *ChanObserver) OnPhase(ev PhaseEvent) {
	select {
	case o.C <- ev:
	default:
	}
}
