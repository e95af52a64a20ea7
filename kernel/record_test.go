package kernel

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatRecord(t *testing.T) {
	require.Equal(t, "0,0\n", string(FormatRecord(0, 0)))
	require.Equal(t, "42,1700000000000\n", string(FormatRecord(42, 1700000000000)))
	require.Equal(t, "18446744073709551615,-5\n", string(FormatRecord(math.MaxUint64, -5)))
	require.Equal(t, "x7,8\n", string(AppendRecord([]byte("x"), 7, 8)))
	require.Equal(t, "3,4\n", Record{Frame: 3, WallClockMS: 4}.String())
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord([]byte("12,1700000000001\n"))
	require.NoError(t, err)
	require.Equal(t, Record{Frame: 12, WallClockMS: 1700000000001}, rec)

	for _, in := range []string{
		"12,1700000000001",
		"12;1700000000001\n",
		"012,1\n",
		"1,01\n",
		",1\n",
		"1,\n",
		"1,2,3\n",
		"-1,2\n",
		"1,-0\n",
		"1, 2\n",
		"1,2\r\n",
		"1,2\n\n",
	} {
		_, err := ParseRecord([]byte(in))
		var errInvalid ErrInvalidRecord
		require.ErrorAs(t, err, &errInvalid, "%q", in)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	for _, rec := range []Record{
		{Frame: 0, WallClockMS: 0},
		{Frame: 1, WallClockMS: -1},
		{Frame: math.MaxUint64, WallClockMS: math.MaxInt64},
	} {
		parsed, err := ParseRecord(rec.Bytes())
		require.NoError(t, err)
		require.Equal(t, rec, parsed)
	}
}

func TestVerifyRecords(t *testing.T) {
	count, err := VerifyRecords(strings.NewReader("0,5\n1,5\n2,7\n"))
	require.NoError(t, err)
	require.Equal(t, uint64(3), count)

	count, err = VerifyRecords(strings.NewReader(""))
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = VerifyRecords(strings.NewReader("0,5\n2,5\n"))
	require.ErrorAs(t, err, &ErrRecordOutOfOrder{})
	require.Equal(t, uint64(1), count)

	_, err = VerifyRecords(strings.NewReader("0,5\n1,5"))
	require.ErrorAs(t, err, &ErrInvalidRecord{})
}
