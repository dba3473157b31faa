package gatt

// Status is the numeric result of a wireless-stack call. Non-OK statuses are
// logged by callers and never escalated; the state machines advance
// regardless.
type Status uint16

const (
	StatusOK           Status = 0x0000
	StatusFail         Status = 0x0001
	StatusInvalidState Status = 0x0002
	StatusInvalidParam Status = 0x0021
	StatusNoConnection Status = 0x0041
	StatusBusy         Status = 0x0004
	StatusNotFound     Status = 0x000e
	StatusFull         Status = 0x0054
)

func (s Status) OK() bool { return s == StatusOK }

func (s Status) String() string {
	const hex = "0123456789abcdef"
	b := [6]byte{'0', 'x',
		hex[s>>12&0xf], hex[s>>8&0xf], hex[s>>4&0xf], hex[s&0xf]}
	return string(b[:])
}
