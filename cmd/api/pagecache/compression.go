package pagecache

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Compressor shrinks snapshot bodies before they leave the process.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ZstdCompressor uses one shared encoder/decoder pair; EncodeAll and DecodeAll
// are safe for concurrent use.
type ZstdCompressor struct {
	once    sync.Once
	initErr error
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

func (z *ZstdCompressor) init() error {
	z.once.Do(func() {
		z.enc, z.initErr = zstd.NewWriter(nil)
		if z.initErr != nil {
			return
		}
		z.dec, z.initErr = zstd.NewReader(nil)
	})
	return z.initErr
}

func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if err := z.init(); err != nil {
		return nil, err
	}
	return z.enc.EncodeAll(data, nil), nil
}

func (z *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if err := z.init(); err != nil {
		return nil, err
	}
	return z.dec.DecodeAll(data, nil)
}
