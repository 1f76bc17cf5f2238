package storage

import (
	"io"

	"medialib/internal/domain/service"
)

// progressReader reports the running byte count after every read.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	fn    service.ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn service.ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.fn(p.read, p.total)
	}
	return n, err
}
