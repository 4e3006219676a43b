// Package otp implements the email verification step: a fixed-size digit
// buffer that reports when it becomes full, and the Flow that submits it.
package otp

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

const Size = common.OTPLength

var (
	ErrSlotOutOfRange = errors.New("otp slot out of range")
	ErrNotDigit       = errors.New("otp accepts digits only")
)

// Buffer holds Size slots, each empty or a single digit, and the focused
// slot. Mutating calls report completed=true only on the call that takes
// the buffer from not full to full.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	slots [Size]byte
	focus int
}

// Input applies value at slot i:
//
//   - "" clears slot i, focus stays;
//   - one digit fills slot i and moves focus to i+1;
//   - several digits (a paste) fill consecutive slots from i, extra
//     characters are dropped, focus moves to the first empty slot or the
//     last slot when full.
//
// Any non-digit rejects the whole input and leaves the buffer unchanged.
func (b *Buffer) Input(i int, value string) (completed bool, err error) {
	if i < 0 || i >= Size {
		return false, ErrSlotOutOfRange
	}

	wasFull := b.Full()

	switch len(value) {
	case 0:
		b.slots[i] = 0
		b.focus = i
		return false, nil

	case 1:
		if !common.IsDigits(value) {
			return false, ErrNotDigit
		}
		b.slots[i] = value[0]
		if i < Size-1 {
			b.focus = i + 1
		} else {
			b.focus = i
		}

	default:
		n := min(len(value), Size-i)
		if !common.IsDigits(value[:n]) {
			return false, ErrNotDigit
		}
		copy(b.slots[i:], value[:n])
		b.focus = b.firstEmpty()
	}

	return !wasFull && b.Full(), nil
}

// Backspace clears slot i when it holds a digit. On an empty slot it moves
// focus back one slot without touching the previous digit.
func (b *Buffer) Backspace(i int) error {
	if i < 0 || i >= Size {
		return ErrSlotOutOfRange
	}
	if b.slots[i] != 0 {
		b.slots[i] = 0
		b.focus = i
		return nil
	}
	if i > 0 {
		b.focus = i - 1
	}
	return nil
}

func (b *Buffer) Full() bool {
	for _, c := range b.slots {
		if c == 0 {
			return false
		}
	}
	return true
}

// Focus is the slot the next keystroke goes to.
func (b *Buffer) Focus() int {
	return b.focus
}

// Slots returns the digits, with "" for empty slots.
func (b *Buffer) Slots() [Size]string {
	var out [Size]string
	for i, c := range b.slots {
		if c != 0 {
			out[i] = string(c)
		}
	}
	return out
}

// Code concatenates the filled slots.
func (b *Buffer) Code() string {
	var sb strings.Builder
	for _, c := range b.slots {
		if c != 0 {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func (b *Buffer) Reset() {
	*b = Buffer{}
}

func (b *Buffer) firstEmpty() int {
	for i, c := range b.slots {
		if c == 0 {
			return i
		}
	}
	return Size - 1
}
