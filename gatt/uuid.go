package gatt

// UUIDs for the two attribute groups the discovery machine walks, in the
// little-endian byte order the stack consumes.

// Health Thermometer service and Temperature Measurement characteristic,
// 16-bit UUIDs assigned by the Bluetooth SIG (0x1809 / 0x2A1C).
var (
	ThermoServiceUUID = []byte{0x09, 0x18}
	ThermoCharUUID    = []byte{0x1c, 0x2a}
)

// Custom button service 00000001-38c8-433e-87ec-652a2d136289 and
// characteristic 00000002-38c8-433e-87ec-652a2d136289.
var (
	ButtonServiceUUID = []byte{
		0x89, 0x62, 0x13, 0x2d, 0x2a, 0x65, // 652a2d136289
		0xec, 0x87, // 87ec
		0x3e, 0x43, // 433e
		0xc8, 0x38, // 38c8
		0x01, 0x00, 0x00, 0x00, // 00000001
	}
	ButtonCharUUID = []byte{
		0x89, 0x62, 0x13, 0x2d, 0x2a, 0x65, // 652a2d136289
		0xec, 0x87, // 87ec
		0x3e, 0x43, // 433e
		0xc8, 0x38, // 38c8
		0x02, 0x00, 0x00, 0x00, // 00000002
	}
)
