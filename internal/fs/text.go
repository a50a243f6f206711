package fs

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

const (
	textDetectionSampleSize      = 4096
	nonPrintableThresholdPercent = 30
)

// Encoding is the on-disk encoding of a document. Documents are always
// edited as UTF-8 and converted back on save.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF8BOM
	EncodingUTF16LE
	EncodingUTF16BE
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8BOM:
		return "utf-8-bom"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "utf-8"
	}
}

var binaryExtensions = map[string]struct{}{
	".7z":   {},
	".bin":  {},
	".exe":  {},
	".gif":  {},
	".gz":   {},
	".jpeg": {},
	".jpg":  {},
	".pdf":  {},
	".png":  {},
	".so":   {},
	".tar":  {},
	".wasm": {},
	".zip":  {},
}

// IsTextFile reports whether content looks like text. The path (if provided)
// rejects obvious binary extensions before sniffing.
func IsTextFile(path string, content []byte) bool {
	if looksBinaryByExtension(path) {
		return false
	}
	if len(content) == 0 {
		return true
	}

	sample := content
	if len(sample) > textDetectionSampleSize {
		sample = sample[:textDetectionSampleSize]
	}
	if enc := detectEncoding(sample); enc != EncodingUTF8 {
		return true
	}
	if bytes.IndexByte(sample, 0x00) != -1 {
		return false
	}
	if utf8.Valid(sample) {
		return true
	}

	nonPrintable := 0
	for _, b := range sample {
		if !isCommonTextByte(b) {
			nonPrintable++
		}
	}
	return nonPrintable*100/len(sample) < nonPrintableThresholdPercent
}

func looksBinaryByExtension(path string) bool {
	if path == "" {
		return false
	}
	_, ok := binaryExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func isCommonTextByte(b byte) bool {
	switch {
	case b == 0x09 || b == 0x0A || b == 0x0D:
		return true
	case b >= 0x20 && b <= 0x7E:
		return true
	case b >= 0x80:
		return true
	default:
		return false
	}
}

func detectEncoding(sample []byte) Encoding {
	if bytes.HasPrefix(sample, []byte{0xEF, 0xBB, 0xBF}) {
		return EncodingUTF8BOM
	}
	if len(sample) >= 2 {
		switch {
		case sample[0] == 0xFF && sample[1] == 0xFE:
			return EncodingUTF16LE
		case sample[0] == 0xFE && sample[1] == 0xFF:
			return EncodingUTF16BE
		}
	}
	return EncodingUTF8
}

// DecodeText converts content to UTF-8 and reports the encoding it was in.
// The byte order mark is dropped.
func DecodeText(content []byte) (string, Encoding, error) {
	enc := detectEncoding(content)
	switch enc {
	case EncodingUTF8BOM:
		return string(content[3:]), enc, nil
	case EncodingUTF16LE, EncodingUTF16BE:
		out, err := utf16Codec(enc).NewDecoder().Bytes(content)
		if err != nil {
			return "", enc, fmt.Errorf("decode %s: %w", enc, err)
		}
		return string(out), enc, nil
	default:
		return string(content), enc, nil
	}
}

// EncodeText converts UTF-8 text back to enc, restoring its byte order mark.
func EncodeText(text string, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingUTF8BOM:
		return append([]byte{0xEF, 0xBB, 0xBF}, text...), nil
	case EncodingUTF16LE, EncodingUTF16BE:
		out, err := utf16Codec(enc).NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", enc, err)
		}
		return out, nil
	default:
		return []byte(text), nil
	}
}

func utf16Codec(enc Encoding) encoding.Encoding {
	endian := unicode.LittleEndian
	if enc == EncodingUTF16BE {
		endian = unicode.BigEndian
	}
	return unicode.UTF16(endian, unicode.UseBOM)
}
