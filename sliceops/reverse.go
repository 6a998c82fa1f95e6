// Package sliceops holds byte slice helpers shared by the wire codecs.
package sliceops

// Reversed returns a reversed copy of b. Bluetooth addresses and 128-bit
// values travel least significant byte first.
func Reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
