package encoding_test

import (
	"io"
	"testing"

	enc "github.com/named-data/ndnlp/std/encoding"
	tu "github.com/named-data/ndnlp/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

var FrTestWire = enc.Wire{
	[]byte{0x01, 0x02, 0x03},
	[]byte{0x04},
	[]byte{0x05, 0x06},
	[]byte{0x07, 0x08, 0x09, 0x0a},
	[]byte{0x0b, 0x0c, 0x0d},
	[]byte{0x0e, 0x0f},
}

func TestWireViewReadByte(t *testing.T) {
	tu.SetT(t)

	r := enc.NewWireView(FrTestWire)
	require.False(t, r.IsEOF())
	require.Equal(t, 0, r.Pos())
	require.Equal(t, 15, r.Length())

	for i := 1; i <= 15; i++ {
		require.Equal(t, uint8(i), tu.NoErr(r.ReadByte()))
		require.Equal(t, i, r.Pos())
	}
	require.True(t, r.IsEOF())
	_, err := r.ReadByte()
	require.Equal(t, io.EOF, err)
}

func TestWireViewSkip(t *testing.T) {
	tu.SetT(t)

	r := enc.NewWireView(FrTestWire)

	require.NoError(t, r.Skip(1))
	require.Equal(t, 1, r.Pos())

	require.NoError(t, r.Skip(10))
	require.Equal(t, 11, r.Pos())
	require.Equal(t, 4, r.Remaining())

	r1 := r // copy r

	require.NoError(t, r.Skip(4))
	require.True(t, r.IsEOF())
	require.Error(t, r.Skip(1))

	// the copy is independent
	require.Equal(t, 11, r1.Pos())
	require.Error(t, r1.Skip(5))
}

func TestWireViewReadWire(t *testing.T) {
	tu.SetT(t)

	r := enc.NewWireView(FrTestWire)

	wire, err := r.ReadWire(2)
	require.NoError(t, err)
	require.Equal(t, enc.Wire{[]byte{0x01, 0x02}}, wire)
	require.Equal(t, 2, r.Pos())

	wire, err = r.ReadWire(6)
	require.NoError(t, err)
	require.Equal(t, enc.Wire{[]byte{0x03}, []byte{0x04}, []byte{0x05, 0x06}, []byte{0x07, 0x08}}, wire)
	require.Equal(t, 8, r.Pos())

	require.NoError(t, r.Skip(1))

	r1 := r // copy r

	wire, err = r.ReadWire(6)
	require.NoError(t, err)
	require.Equal(t, enc.Wire{[]byte{0x0a}, []byte{0x0b, 0x0c, 0x0d}, []byte{0x0e, 0x0f}}, wire)
	require.True(t, r.IsEOF())

	_, err = r.ReadWire(1)
	require.Equal(t, enc.ErrBufferOverflow, err)

	require.Equal(t, 9, r1.Pos())
	_, err = r1.ReadWire(7)
	require.Equal(t, enc.ErrBufferOverflow, err)
	require.Equal(t, 9, r1.Pos())
}

func TestWireViewReadBuf(t *testing.T) {
	tu.SetT(t)

	r := enc.NewWireView(FrTestWire)

	buf, err := r.ReadBuf(2)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, buf)

	buf, err = r.ReadBuf(6)
	require.NoError(t, err)
	require.Equal(t, []byte{0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, buf)
	require.Equal(t, 8, r.Pos())

	buf, err = r.ReadBuf(0)
	require.NoError(t, err)
	require.Len(t, buf, 0)

	buf, err = r.ReadBuf(8)
	require.Equal(t, enc.ErrBufferOverflow, err)
	require.Nil(t, buf)
	require.Equal(t, 8, r.Pos())
}

func TestWireViewEmptySegments(t *testing.T) {
	tu.SetT(t)

	r := enc.NewWireView(enc.Wire{{}, {0x01}, {}, {}, {0x02, 0x03}, {}})
	require.Equal(t, 3, r.Length())
	require.Equal(t, []byte{0x01, 0x02, 0x03}, tu.NoErr(r.ReadBuf(3)))
	require.True(t, r.IsEOF())
}

func TestWireViewReadTLNum(t *testing.T) {
	tu.SetT(t)

	r := enc.NewBufferView([]byte{
		0xfc,
		0xfd, 0x03, 0x44,
		0xfe, 0x00, 0x01, 0x00, 0x00,
		0xff, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00,
		0xfd, 0x01,
	})
	require.Equal(t, enc.TLNum(0xfc), tu.NoErr(r.ReadTLNum()))
	require.Equal(t, enc.TLNum(0x0344), tu.NoErr(r.ReadTLNum()))
	require.Equal(t, enc.TLNum(0x10000), tu.NoErr(r.ReadTLNum()))
	require.Equal(t, enc.TLNum(0x100000000), tu.NoErr(r.ReadTLNum()))

	_, err := r.ReadTLNum()
	require.Equal(t, io.ErrUnexpectedEOF, err)
}
