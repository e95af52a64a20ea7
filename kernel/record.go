package kernel

import (
	"bytes"
	"fmt"
	"strconv"
)

// Record is one line of the companion text stream: "<frame>,<wall_clock_ms>\n".
type Record struct {
	Frame       uint64
	WallClockMS int64
}

// AppendRecord appends the text form of the record to dst.
func AppendRecord(dst []byte, frame uint64, wallClockMS int64) []byte {
	dst = strconv.AppendUint(dst, frame, 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, wallClockMS, 10)
	return append(dst, '\n')
}

func FormatRecord(frame uint64, wallClockMS int64) []byte {
	return AppendRecord(make([]byte, 0, 32), frame, wallClockMS)
}

func (r Record) Bytes() []byte {
	return FormatRecord(r.Frame, r.WallClockMS)
}

func (r Record) String() string {
	return string(r.Bytes())
}

type ErrInvalidRecord struct {
	Record []byte
	Reason string
}

func (e ErrInvalidRecord) Error() string {
	return fmt.Sprintf("invalid record %q: %s", e.Record, e.Reason)
}

// ParseRecord parses exactly one record, including its trailing newline.
func ParseRecord(b []byte) (Record, error) {
	line, ok := bytes.CutSuffix(b, []byte{'\n'})
	if !ok {
		return Record{}, ErrInvalidRecord{Record: b, Reason: "no trailing newline"}
	}
	frameStr, msStr, ok := bytes.Cut(line, []byte{','})
	if !ok {
		return Record{}, ErrInvalidRecord{Record: b, Reason: "no comma"}
	}
	if !isCanonicalDecimal(frameStr, false) || !isCanonicalDecimal(msStr, true) {
		return Record{}, ErrInvalidRecord{Record: b, Reason: "not a canonical decimal"}
	}
	frame, err := strconv.ParseUint(string(frameStr), 10, 64)
	if err != nil {
		return Record{}, ErrInvalidRecord{Record: b, Reason: err.Error()}
	}
	ms, err := strconv.ParseInt(string(msStr), 10, 64)
	if err != nil {
		return Record{}, ErrInvalidRecord{Record: b, Reason: err.Error()}
	}
	return Record{Frame: frame, WallClockMS: ms}, nil
}

// isCanonicalDecimal accepts digits without leading zeros (and an optional
// minus sign when signed is set).
func isCanonicalDecimal(s []byte, signed bool) bool {
	if signed && len(s) > 1 && s[0] == '-' {
		s = s[1:]
		if len(s) == 1 && s[0] == '0' {
			return false
		}
	}
	if len(s) == 0 {
		return false
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
