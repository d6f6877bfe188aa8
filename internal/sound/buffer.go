package sound

import (
	"errors"
	"io"

	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
)

// WAV renders the soundtrack into memory.
func WAV(plan spin.Plan, opts Options) ([]byte, error) {
	var buf seekBuffer
	if err := WriteWAV(&buf, plan, opts); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes once the data length is known.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	n := copy(b.data[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("sound: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("sound: negative position")
	}
	b.pos = int(abs)
	return abs, nil
}
