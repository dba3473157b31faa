package gatt

// Session carries the connection-scoped state shared between the node loop
// and both state machines. There is exactly one, owned by the node; the
// machines mutate the discovered-handle and armed fields through the pointer
// handed to them at construction. All access happens on the consumer
// goroutine.
type Session struct {
	Connection     uint8
	ConnectionOpen bool

	// Armed by the peer writing the client characteristic configuration.
	MeasurementIndications bool
	ButtonIndications      bool

	// True while an indication is awaiting its confirmation.
	IndicationInFlight bool

	// Most recent handles returned by a discovery procedure; the discovery
	// machine copies them into the per-group fields below.
	ServiceHandle        uint32
	CharacteristicHandle uint16

	ThermoService        uint32
	ThermoCharacteristic uint16
	ButtonService        uint32
	ButtonCharacteristic uint16
}

// Opened records a new connection and resets per-connection flags.
func (s *Session) Opened(conn uint8) {
	s.Connection = conn
	s.ConnectionOpen = true
	s.IndicationInFlight = false
}

// Closed clears everything armed or in flight for the dropped connection.
// Discovered handles are kept; a reconnect rediscovers and overwrites them.
func (s *Session) Closed() {
	s.ConnectionOpen = false
	s.MeasurementIndications = false
	s.ButtonIndications = false
	s.IndicationInFlight = false
}
