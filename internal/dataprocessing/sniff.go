package dataprocessing

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/traditionalchinese"
)

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04} // "PK\x03\x04", spreadsheet archive
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// sampleSize bounds how much of the file the sniffers look at.
const sampleSize = 8192

// isSpreadsheet reports whether data starts with the ZIP local-file-header
// magic, i.e. is an xlsx-style archive rather than delimited text.
func isSpreadsheet(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// decodeText decodes raw file bytes into UTF-8 text. Encodings are tried in
// a fixed order: UTF-8 with BOM, Big5 (covering the cp950 and big5 labels
// the upstream exports use), plain UTF-8. The first candidate that decodes
// the leading sample cleanly wins; when all fail the last error is returned.
func decodeText(data []byte) (string, error) {
	sample := data
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	var lastErr error
	for _, c := range encodingCandidates {
		if err := c.check(sample); err != nil {
			lastErr = fmt.Errorf("%s: %w", c.name, err)
			continue
		}
		return c.decode(data)
	}
	return "", lastErr
}

type encodingCandidate struct {
	name   string
	check  func(sample []byte) error
	decode func(data []byte) (string, error)
}

var encodingCandidates = []encodingCandidate{
	{
		name: "utf-8-sig",
		check: func(sample []byte) error {
			if !bytes.HasPrefix(sample, utf8BOM) {
				return fmt.Errorf("no byte-order mark")
			}
			if !utf8.Valid(sample) {
				return fmt.Errorf("invalid UTF-8 after byte-order mark")
			}
			return nil
		},
		decode: func(data []byte) (string, error) {
			return string(bytes.TrimPrefix(data, utf8BOM)), nil
		},
	},
	{
		name:  "big5",
		check: checkBig5,
		decode: func(data []byte) (string, error) {
			out, err := traditionalchinese.Big5.NewDecoder().Bytes(data)
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	},
	{
		name: "utf-8",
		check: func(sample []byte) error {
			if !utf8.Valid(sample) {
				return fmt.Errorf("invalid UTF-8")
			}
			return nil
		},
		decode: func(data []byte) (string, error) {
			return string(data), nil
		},
	},
}

// checkBig5 accepts a sample only when Big5 decoding is both clean and
// plausible. Valid UTF-8 containing multibyte runes is rejected: many UTF-8
// sequences also happen to decode as Big5, and picking Big5 there would turn
// the headers to mojibake.
func checkBig5(sample []byte) error {
	if utf8.Valid(sample) {
		for _, b := range sample {
			if b >= 0x80 {
				return fmt.Errorf("sample is valid multibyte UTF-8")
			}
		}
		// Pure ASCII decodes identically either way.
		return nil
	}
	out, err := traditionalchinese.Big5.NewDecoder().Bytes(sample)
	if err != nil {
		return err
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return fmt.Errorf("undecodable byte sequence")
	}
	return nil
}

// delimiterCandidates in priority order; comma is also the fallback when
// sniffing is inconclusive.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// sniffDelimiter picks the field delimiter that yields a consistent column
// count greater than one across the leading sample lines. Ties go to the
// candidate splitting into more columns; no consistent candidate means
// comma.
func sniffDelimiter(text string) rune {
	lines := sampleLines(text, 20)
	if len(lines) == 0 {
		return ','
	}

	best := ','
	bestCols := 1
	for _, d := range delimiterCandidates {
		cols := strings.Count(lines[0], string(d)) + 1
		if cols <= 1 {
			continue
		}
		consistent := true
		for _, line := range lines[1:] {
			if strings.Count(line, string(d))+1 != cols {
				consistent = false
				break
			}
		}
		if consistent && cols > bestCols {
			best = d
			bestCols = cols
		}
	}
	return best
}

func sampleLines(text string, n int) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}
