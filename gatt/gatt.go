// Package gatt declares the wireless-stack collaborator contracts the node
// core drives: the local attribute server, the remote-discovery client, the
// connection session, and the indication retry queue. The stack itself is
// external; platform bindings provide concrete implementations and feed stack
// events back through a channel of Event.
package gatt

// NotifyMode selects how a remote characteristic reports value changes.
type NotifyMode uint8

const (
	NotifyDisabled NotifyMode = iota
	NotifyNotification
	NotifyIndication
)

// Server is the local attribute-server surface.
type Server interface {
	// WriteAttribute updates the backing store for a local attribute.
	WriteAttribute(handle uint16, offset uint16, value []byte) Status
	// SendIndication sends an acknowledged value-change notification.
	// Exactly one indication may be in flight per connection; the caller
	// tracks that via Session.IndicationInFlight.
	SendIndication(conn uint8, handle uint16, value []byte) Status
}

// Client is the remote service-discovery surface. Each call starts an
// asynchronous procedure; the stack later delivers EvServiceDiscovered /
// EvCharacteristicDiscovered results followed by one EvProcedureCompleted.
type Client interface {
	DiscoverPrimaryServiceByUUID(conn uint8, uuid []byte) Status
	DiscoverCharacteristicsByUUID(conn uint8, service uint32, uuid []byte) Status
	SetCharacteristicNotification(conn uint8, characteristic uint16, mode NotifyMode) Status
}

// Local attribute handles. Fixed database layout, mirroring the generated
// attribute table the stack serves.
const (
	AttrTemperatureMeasurement uint16 = 0x001b
	AttrButtonState            uint16 = 0x0021
)
