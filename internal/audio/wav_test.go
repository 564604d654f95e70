package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/jfreymuth/pulse"
	"github.com/stretchr/testify/require"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	data := EncodeWAV(pcm, 16000, 0)

	require.Len(t, data, 48)
	require.Equal(t, "RIFF", string(data[0:4]))
	require.Equal(t, "WAVE", string(data[8:12]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]))
	require.Equal(t, uint32(16000), binary.LittleEndian.Uint32(data[24:28]))
	require.Equal(t, uint32(4), binary.LittleEndian.Uint32(data[40:44]))
	require.True(t, IsWAV(data))
}

func TestDecodeWAVSkipsUnknownChunks(t *testing.T) {
	pcm := []byte{9, 8, 7, 6}
	encoded := EncodeWAV(pcm, 22050, 2)

	// Splice a LIST chunk with an odd size between fmt and data.
	var spliced bytes.Buffer
	spliced.Write(encoded[:36])
	spliced.WriteString("LIST")
	require.NoError(t, binary.Write(&spliced, binary.LittleEndian, uint32(3)))
	spliced.Write([]byte{'a', 'b', 'c', 0})
	spliced.Write(encoded[36:])

	wav, err := DecodeWAV(spliced.Bytes())
	require.NoError(t, err)
	require.Equal(t, 22050, wav.SampleRate)
	require.Equal(t, 2, wav.Channels)
	require.Equal(t, pcm, wav.PCM)
}

func TestDecodeWAVRejectsNonPCM(t *testing.T) {
	data := EncodeWAV([]byte{0, 0}, 8000, 1)
	binary.LittleEndian.PutUint16(data[20:22], 3) // IEEE float

	_, err := DecodeWAV(data)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported wav encoding")
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, err := DecodeWAV([]byte("ID3 not a wav"))
	require.Error(t, err)
	require.False(t, IsWAV([]byte("ID3")))
}

func TestInt16ReaderSignalsEndOfData(t *testing.T) {
	raw := []byte{0x01, 0x00, 0xff, 0xff, 0x10}
	read := int16Reader(bytes.NewReader(raw))

	buf := make([]int16, 4)
	n, err := read(buf)
	require.Equal(t, 2, n)
	require.ErrorIs(t, err, pulse.EndOfData)
	require.Equal(t, []int16{1, -1}, buf[:n])
}

func TestInt16ReaderPropagatesReadErrors(t *testing.T) {
	boom := errors.New("boom")
	read := int16Reader(io.MultiReader(bytes.NewReader([]byte{2, 0}), &failingReader{err: boom}))

	buf := make([]int16, 1)
	n, err := read(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = read(buf)
	require.ErrorIs(t, err, boom)
}

type failingReader struct{ err error }

func (r *failingReader) Read([]byte) (int, error) { return 0, r.err }
