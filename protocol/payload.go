package protocol

import "fmt"

// RevealedWordSize is the fixed width of a decryption cleartext
// payload: one big-endian word encoding exactly one boolean.
const RevealedWordSize = 32

// EncodeRevealedBool produces the fixed-width cleartext encoding of a
// revealed boolean. Used by oracle implementations.
func EncodeRevealedBool(v bool) []byte {
	word := make([]byte, RevealedWordSize)
	if v {
		word[RevealedWordSize-1] = 1
	}
	return word
}

// DecodeRevealedBool decodes a cleartext payload. Any payload that is
// not exactly one word encoding 0 or 1 fails with ErrMalformedCleartext.
func DecodeRevealedBool(payload []byte) (bool, error) {
	if len(payload) != RevealedWordSize {
		return false, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrMalformedCleartext, RevealedWordSize, len(payload))
	}
	for _, b := range payload[:RevealedWordSize-1] {
		if b != 0 {
			return false, fmt.Errorf("%w: payload is not a boolean word", ErrMalformedCleartext)
		}
	}
	switch payload[RevealedWordSize-1] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: payload is not a boolean word", ErrMalformedCleartext)
	}
}
