// Package images holds the raster helpers shared by staging, presentation and
// the HTTP host: media-kind detection, dimension probing and artifact decoding.
package images

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Media kinds accepted for staging. image/jpg is not registered with IANA but
// browsers and the analysis service both send it.
const (
	KindJPEG    = "image/jpeg"
	KindJPG     = "image/jpg"
	KindPNG     = "image/png"
	KindUnknown = "application/octet-stream"
)

var acceptedKinds = map[string]bool{
	KindJPEG: true,
	KindJPG:  true,
	KindPNG:  true,
}

// Accepted reports whether kind is one of the raster formats the analysis
// service understands. Parameters such as charset are ignored.
func Accepted(kind string) bool {
	return acceptedKinds[NormalizeKind(kind)]
}

// NormalizeKind lower-cases a content type and strips its parameters
func NormalizeKind(kind string) string {
	kind = strings.TrimSpace(strings.ToLower(kind))
	if mediaType, _, err := mime.ParseMediaType(kind); err == nil {
		return mediaType
	}
	return kind
}

// DeclaredKind derives the declared media kind of a file from its extension,
// falling back to content sniffing when the extension is unknown.
func DeclaredKind(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return KindJPEG
	case ".png":
		return KindPNG
	}
	if ext := filepath.Ext(filename); ext != "" {
		if kind := mime.TypeByExtension(ext); kind != "" {
			return NormalizeKind(kind)
		}
	}
	if len(data) == 0 {
		return KindUnknown
	}
	return NormalizeKind(http.DetectContentType(data))
}

// Dimensions decodes only the image header and returns width and height
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, eris.Wrap(err, "failed to decode image header")
	}
	return cfg.Width, cfg.Height, nil
}

// ContentName returns the MD5 of data joined with ext, used as a stable
// on-disk name for previews.
func ContentName(data []byte, ext string) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]) + strings.ToLower(ext)
}

// DecodeArtifact decodes a base64 JPEG artifact as sent by the analysis
// service. A data URL prefix is tolerated.
func DecodeArtifact(encoded string) ([]byte, error) {
	if i := strings.Index(encoded, ";base64,"); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, eris.Wrap(err, "failed to decode base64 artifact")
	}
	return data, nil
}

// SizeKB formats a byte count the way the upload preview labels it
func SizeKB(n int) float64 {
	return float64(int(float64(n)/1024*10+0.5)) / 10
}
