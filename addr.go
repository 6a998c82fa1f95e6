package bthost

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rigado/bthost/sliceops"
)

// BDAddr is a Bluetooth device address in display order (most significant
// byte first), e.g. AA:BB:CC:DD:EE:FF.
type BDAddr [6]byte

// ParseBDAddr parses a colon separated or plain hex address.
func ParseBDAddr(s string) (BDAddr, error) {
	var a BDAddr
	h := strings.Replace(strings.TrimSpace(s), ":", "", -1)
	h = strings.Replace(h, "-", "", -1)
	b, err := hex.DecodeString(h)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %v", s, err)
	}
	if len(b) != len(a) {
		return a, fmt.Errorf("invalid address %q: want 6 bytes, have %d", s, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// MustParseBDAddr is like ParseBDAddr but panics on malformed input.
func MustParseBDAddr(s string) BDAddr {
	a, err := ParseBDAddr(s)
	if err != nil {
		panic(err)
	}
	return a
}

// BDAddrFromLE builds an address from its little-endian wire encoding.
func BDAddrFromLE(b []byte) BDAddr {
	var a BDAddr
	if len(b) < len(a) {
		return a
	}
	copy(a[:], sliceops.Reversed(b[:6]))
	return a
}

// LE returns the little-endian wire encoding of the address.
func (a BDAddr) LE() [6]byte {
	var out [6]byte
	copy(out[:], sliceops.Reversed(a[:]))
	return out
}

// Bytes returns the address in display order.
func (a BDAddr) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// IsZero reports whether the address is unset.
func (a BDAddr) IsZero() bool {
	return a == BDAddr{}
}

func (a BDAddr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// MarshalText lets addresses be used as JSON map keys.
func (a BDAddr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the textual form produced by MarshalText.
func (a *BDAddr) UnmarshalText(b []byte) error {
	v, err := ParseBDAddr(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
