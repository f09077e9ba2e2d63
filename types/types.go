package types

import (
	"errors"

	fasthex "github.com/tmthrgd/go-hex"
)

const HashSize = 32

// Hash A 32-byte digest, rendered as lowercase hex
//
//nolint:recvcheck
type Hash [HashSize]byte

var ZeroHash Hash

var ErrWrongSize = errors.New("wrong size")

func (h Hash) MarshalJSON() ([]byte, error) {
	var buf [HashSize*2 + 2]byte
	buf[0] = '"'
	buf[HashSize*2+1] = '"'
	fasthex.Encode(buf[1:], h[:])
	return buf[:], nil
}

func (h *Hash) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || len(b) == 2 {
		return nil
	}

	if len(b) != HashSize*2+2 {
		return errors.New("wrong hash size")
	}

	if _, err := fasthex.Decode(h[:], b[1:len(b)-1]); err != nil {
		return err
	}

	return nil
}

func (h Hash) Slice() []byte {
	return h[:]
}

func (h Hash) String() string {
	return fasthex.EncodeToString(h[:])
}

func MustHashFromString(s string) Hash {
	return MustBytes32FromString[Hash](s)
}

func HashFromString(s string) (Hash, error) {
	return Bytes32FromString[Hash](s)
}

// Bytes32FromString Decodes a hex string into a 32 byte array, failing if the decoded length differs
func Bytes32FromString[T ~[32]byte](s string) (T, error) {
	var h T
	if buf, err := fasthex.DecodeString(s); err != nil {
		return h, err
	} else {
		if len(buf) != len(h) {
			return h, ErrWrongSize
		}
		copy(h[:], buf)
		return h, nil
	}
}

func MustBytes32FromString[T ~[32]byte](s string) T {
	if h, err := Bytes32FromString[T](s); err != nil {
		panic(err)
	} else {
		return h
	}
}

// Bytes64FromString Decodes a hex string into a 64 byte array, failing if the decoded length differs
func Bytes64FromString[T ~[64]byte](s string) (T, error) {
	var h T
	if buf, err := fasthex.DecodeString(s); err != nil {
		return h, err
	} else {
		if len(buf) != len(h) {
			return h, ErrWrongSize
		}
		copy(h[:], buf)
		return h, nil
	}
}

func MustBytes64FromString[T ~[64]byte](s string) T {
	if h, err := Bytes64FromString[T](s); err != nil {
		panic(err)
	} else {
		return h
	}
}
