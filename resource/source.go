package resource

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gogpu/overlaycam/layer"
	"github.com/mitchellh/go-homedir"
)

// Source identifies an image resource. Exactly one field is normally set;
// URL wins when both are.
type Source struct {
	Path string
	URL  string
}

// SourceOf returns the source of an image layer payload.
func SourceOf(img *layer.Image) Source {
	if img == nil {
		return Source{}
	}
	return Source{Path: img.Path, URL: img.URL}
}

// Key returns the identity used to deduplicate loads.
func (s Source) Key() string {
	if s.URL != "" {
		return "url:" + s.URL
	}
	return "path:" + s.Path
}

// IsZero reports whether s names nothing.
func (s Source) IsZero() bool {
	return s.Path == "" && s.URL == ""
}

func (s Source) String() string {
	ref := s.URL
	if ref == "" {
		ref = s.Path
	}
	if strings.HasPrefix(ref, "data:") && len(ref) > 32 {
		return ref[:32] + "..."
	}
	return ref
}

// fetch returns the raw bytes of s.
func (l *Loader) fetch(ctx context.Context, s Source) ([]byte, error) {
	ref := s.URL
	if ref == "" {
		ref = s.Path
	}
	switch {
	case ref == "":
		return nil, errors.New("empty source")
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetchRemote(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, err
		}
		return l.readFile(u.Path)
	}
	if s.URL != "" {
		return nil, fmt.Errorf("unsupported url scheme in %q", ref)
	}
	return l.readFile(ref)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, l.maxBytes)
}

func (l *Loader) fetchRemote(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return readLimited(resp.Body, l.maxBytes)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("resource exceeds %d bytes", limit)
	}
	return data, nil
}

// decodeDataURI decodes an RFC 2397 data URI payload.
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data uri")
	}
	if strings.HasSuffix(meta, ";base64") {
		payload = strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\n', '\r', '\t':
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers drop the padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data uri: %w", err)
	}
	return []byte(s), nil
}
