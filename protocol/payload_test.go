package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRevealedBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		word := EncodeRevealedBool(v)
		require.Len(t, word, RevealedWordSize)
		got, err := DecodeRevealedBool(word)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestDecodeRevealedBoolMalformed(t *testing.T) {
	cases := map[string][]byte{
		"empty":           {},
		"short":           make([]byte, RevealedWordSize-1),
		"long":            make([]byte, RevealedWordSize+1),
		"bad final byte":  append(make([]byte, RevealedWordSize-1), 0x02),
		"nonzero leading": append([]byte{0x01}, make([]byte, RevealedWordSize-1)...),
	}
	for name, word := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRevealedBool(word)
			require.ErrorIs(t, err, ErrMalformedCleartext)
		})
	}
}
