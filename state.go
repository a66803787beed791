package smartpoll

// Mode identifies which phase of its lifecycle a Driver is in. Every
// Driver starts at ModeIdle and performs exactly one transition to either
// ModeBlockingWait or ModeLoopRunning, ending at ModeStopped.
type Mode int32

const (
	ModeIdle Mode = iota
	ModeBlockingWait
	ModeLoopRunning
	ModeStopped
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "Idle"
	case ModeBlockingWait:
		return "BlockingWait"
	case ModeLoopRunning:
		return "LoopRunning"
	case ModeStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
