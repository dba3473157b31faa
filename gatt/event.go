package gatt

// EventKind classifies one message from the wireless stack (or, for
// EvExternalSignal, from the event scheduler via the stack's signal path).
type EventKind uint8

const (
	EvNone EventKind = iota
	EvConnectionOpened
	EvConnectionClosed
	EvExternalSignal
	EvProcedureCompleted
	EvServiceDiscovered
	EvCharacteristicDiscovered
	EvCharacteristicStatus
	EvCharacteristicValue
	EvIndicationConfirmed
)

// Event is the generic dispatch unit handed once per drained occurrence to
// each state machine. Fields beyond Kind are valid only for the kinds noted.
type Event struct {
	Kind       EventKind
	Connection uint8

	// EvExternalSignal: OR of scheduler signal bits posted since the last
	// dispatch.
	Signals uint32

	// EvServiceDiscovered / EvCharacteristicDiscovered.
	Service        uint32
	Characteristic uint16

	// EvCharacteristicStatus: Attribute plus whether the peer armed
	// indications on it. EvCharacteristicValue: Attribute plus Value.
	Attribute uint16
	Armed     bool
	Value     []byte

	// EvProcedureCompleted: result of the completed procedure.
	Result Status
}

// ExternalSignal builds the dispatch event for a drained scheduler flag mask.
func ExternalSignal(signals uint32) Event {
	return Event{Kind: EvExternalSignal, Signals: signals}
}
