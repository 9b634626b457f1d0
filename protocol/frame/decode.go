// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package frame

import (
	"bufio"
	"fmt"
	"io"
)

// Kind tells the two frame shapes apart.
type Kind int

const (
	KindRGB Kind = iota + 1
	KindLEDSelect
)

func (k Kind) String() string {
	switch k {
	case KindRGB:
		return "rgb"
	case KindLEDSelect:
		return "led"
	default:
		return "unknown"
	}
}

// Command is a decoded frame as a receiver sees it.
type Command struct {
	Kind  Kind
	Color Color
	LED   LED
}

type MalformedFrameError struct {
	Frame  string
	Reason string
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed frame %q: %s", e.Frame, e.Reason)
}

// Decode parses a single complete frame.
func Decode(b []byte) (Command, error) {
	bad := func(reason string) (Command, error) {
		return Command{}, &MalformedFrameError{Frame: string(b), Reason: reason}
	}
	if len(b) < 2 || b[0] != StartByte || b[len(b)-1] != EndByte {
		return bad("missing delimiters")
	}

	switch {
	case len(b) == LEDSelectSize && b[1] == TagLED:
		if b[2] != '0' {
			return bad("led selector must start with 0")
		}
		n, ok := digits(b[3:5])
		if !ok {
			return bad("led selector is not numeric")
		}
		led := LED(n)
		if !led.Valid() {
			return bad(fmt.Sprintf("unknown led %d", n))
		}
		return Command{Kind: KindLEDSelect, LED: led}, nil

	case len(b) == RGBSize && b[1] == TagRed:
		// {Rddd,Gddd,Bddd}
		//  1   5 6   10 11
		if b[5] != ',' || b[10] != ',' || b[6] != TagGreen || b[11] != TagBlue {
			return bad("unexpected field layout")
		}
		var ch [3]uint8
		for i, off := range []int{2, 7, 12} {
			v, ok := digits(b[off : off+3])
			if !ok {
				return bad("channel is not numeric")
			}
			if v > MaxChannel {
				return bad(fmt.Sprintf("channel out of range: %d", v))
			}
			ch[i] = uint8(v)
		}
		return Command{Kind: KindRGB, Color: Color{R: ch[0], G: ch[1], B: ch[2]}}, nil
	}
	return bad("unknown frame shape")
}

func digits(b []byte) (int, bool) {
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// Reader splits a byte stream into frames. Bytes outside braces are
// dropped, and a new '{' restarts the frame in progress.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadFrame returns the next brace-delimited frame.
func (fr *Reader) ReadFrame() (Frame, error) {
	var buf []byte
	inFrame := false
	for {
		c, err := fr.r.ReadByte()
		if err != nil {
			if err == io.EOF && inFrame {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		switch {
		case c == StartByte:
			inFrame = true
			buf = append(buf[:0], c)
		case !inFrame:
		case c == EndByte:
			buf = append(buf, c)
			return Frame(buf), nil
		default:
			if len(buf) >= RGBSize {
				// Too long for any known frame, resync on the next '{'.
				inFrame = false
				buf = buf[:0]
				continue
			}
			buf = append(buf, c)
		}
	}
}
