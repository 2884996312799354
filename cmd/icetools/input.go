package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/segmentio/icefile"
	"howett.net/ranger"
)

// openInput opens a local file path or an http(s) URL. URLs are fetched with
// range requests, so only the footer and the scanned columns are downloaded.
func openInput(path string) (io.ReaderAt, int64, func() error, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		u, err := url.Parse(path)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("invalid url %q: %w", path, err)
		}
		reader, err := ranger.NewReader(&ranger.HTTPRanger{URL: u})
		if err != nil {
			return nil, 0, nil, err
		}
		length, err := reader.Length()
		if err != nil {
			return nil, 0, nil, err
		}
		return reader, length, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, nil, err
	}
	return f, info.Size(), f.Close, nil
}

func loadTableSchema(path string) (*icefile.TableSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return icefile.ParseTableSchema(data)
}
