package kernel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

type ErrRecordOutOfOrder struct {
	Line     uint64
	Expected uint64
	Actual   uint64
}

func (e ErrRecordOutOfOrder) Error() string {
	return fmt.Sprintf("line %d: expected frame %d, got %d", e.Line, e.Expected, e.Actual)
}

// VerifyRecords reads a text stream written from textsrc and checks that
// every line is a record and that the frame numbers go 0, 1, 2, ...
// It returns the amount of valid records read.
func VerifyRecords(r io.Reader) (uint64, error) {
	reader := bufio.NewReader(r)
	var count uint64
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			rec, parseErr := ParseRecord(line)
			if parseErr != nil {
				return count, fmt.Errorf("line %d: %w", count+1, parseErr)
			}
			if rec.Frame != count {
				return count, ErrRecordOutOfOrder{Line: count + 1, Expected: count, Actual: rec.Frame}
			}
			count++
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return count, nil
		default:
			return count, err
		}
	}
}
