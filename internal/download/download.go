package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const defaultUserAgent = "property-explorer/1.0"

// maxBodyBytes bounds a single imagery response. Street View and Static Maps images at
// the largest supported size are well under this.
const maxBodyBytes = 16 << 20

// ErrHTTPStatus is wrapped into errors for non-200 responses.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Fetch GETs url and returns the body and its Content-Type. Non-200 responses return an
// error wrapping ErrHTTPStatus. The request is bound to ctx and to client's timeout.
func Fetch(ctx context.Context, client *http.Client, url string) (body []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download: HTTP %d: %w", resp.StatusCode, ErrHTTPStatus)
	}
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Cache stores fetched bodies as files under Dir. The zero value (empty Dir) is a
// disabled cache: lookups miss and stores are dropped.
type Cache struct {
	Dir string
}

// Enabled reports whether the cache has a directory.
func (c Cache) Enabled() bool { return c.Dir != "" }

// Load returns the cached body for key, if present. Any image extension matches.
func (c Cache) Load(key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	matches, err := filepath.Glob(filepath.Join(c.Dir, sanitizeFilename(key)+".*"))
	if err != nil || len(matches) == 0 {
		return nil, false
	}
	data, err := os.ReadFile(matches[0])
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Store writes body under key, naming the extension from contentType. Writes go to a
// temp file first so concurrent readers never see a partial image.
func (c Cache) Store(key, contentType string, body []byte) (savedPath string, err error) {
	if !c.Enabled() {
		return "", nil
	}
	ext := extensionFromContentType(contentType)
	if ext == "" {
		ext = ".bin"
	}
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	savedPath = filepath.Join(c.Dir, sanitizeFilename(key)+ext)
	tmp, err := os.CreateTemp(c.Dir, ".partial-*")
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("download: %w", err)
	}
	if err := os.Rename(tmp.Name(), savedPath); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("download: %w", err)
	}
	return savedPath, nil
}

func extensionFromContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return ".jpg"
	case strings.Contains(ct, "gif"):
		return ".gif"
	case strings.Contains(ct, "webp"):
		return ".webp"
	}
	return ""
}

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func sanitizeFilename(name string) string {
	if name == "" {
		return "download"
	}
	name = safeNameRe.ReplaceAllString(name, "_")
	if len(name) > 96 {
		name = name[:96]
	}
	return name
}
