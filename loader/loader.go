// Package loader parses the Y86-64 ".yo" object format into a flat byte
// image ready to be loaded into simulator memory.
package loader

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Image is a loaded program: a contiguous byte slice meant to be copied
// into memory starting at address 0.
type Image struct {
	Bytes []byte
}

// Empty reports whether the image has no bytes at all — the condition
// that causes the CLI to exit with status 1 before simulating.
func (img *Image) Empty() bool {
	return img == nil || len(img.Bytes) == 0
}

// Load reads a ".yo" text stream and builds an Image. Malformed or
// irrelevant lines are silently skipped, matching the source format's
// tolerance for comments and blank lines.
func Load(r io.Reader) (*Image, error) {
	bytes := map[uint64]byte{}
	var maxAddr uint64
	var touched bool

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "|") {
			continue
		}

		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}

		addrText := strings.TrimSpace(line[:colon])
		addrText = strings.TrimPrefix(addrText, "0x")
		addrText = strings.TrimPrefix(addrText, "0X")
		addr, err := strconv.ParseUint(addrText, 16, 64)
		if err != nil {
			continue
		}

		rest := line[colon+1:]
		if bar := strings.Index(rest, "|"); bar >= 0 {
			rest = rest[:bar]
		}

		offset := uint64(0)
		for _, tok := range strings.Fields(rest) {
			// A token is a run of two-digit hex bytes, e.g. "30f0".
			for i := 0; i+2 <= len(tok); i += 2 {
				b, err := strconv.ParseUint(tok[i:i+2], 16, 8)
				if err != nil {
					continue
				}
				a := addr + offset
				bytes[a] = byte(b)
				if a > maxAddr {
					maxAddr = a
				}
				touched = true
				offset++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !touched {
		return &Image{}, nil
	}

	out := make([]byte, maxAddr+1)
	for addr, b := range bytes {
		out[addr] = b
	}
	return &Image{Bytes: out}, nil
}
