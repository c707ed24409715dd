package tools

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// maxInputFrame bounds one TLV element read by the tools.
const maxInputFrame = 1 << 16

// readInput reads all of r, decoding it from hex if asked to.
// Whitespace in hex input is ignored.
func readInput(r io.Reader, isHex bool) ([]byte, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !isHex {
		return buf, nil
	}

	clean := strings.Map(func(c rune) rune {
		if unicode.IsSpace(c) {
			return -1
		}
		return c
	}, string(buf))
	out, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return out, nil
}

// inputStream is readInput as a reader.
func inputStream(r io.Reader, isHex bool) (io.Reader, error) {
	if !isHex {
		return r, nil
	}
	buf, err := readInput(r, true)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(buf), nil
}
