package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
)

// ValuesFilename returns the artifact name for a block height.
func ValuesFilename(height int64) string {
	return fmt.Sprintf("%d_tx_values.txt", height)
}

// WriteValues writes values one per line, without a trailing newline.
func WriteValues(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	for i, v := range values {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(FormatNumber(v)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ExportValues writes values to a text file at path.
func ExportValues(path string, values []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteValues(f, values); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadValues parses newline separated values leniently. Malformed lines
// become NaN and empty lines become 0.
func ReadValues(r io.Reader) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	lines := strings.Split(string(data), "\n")
	out := make([]float64, len(lines))
	for i, l := range lines {
		out[i] = ParseNumber(l)
	}
	return out, nil
}

// ReadValuesStrict parses newline separated values, skipping blank lines
// and failing on the first line that is not a number.
func ReadValuesStrict(r io.Reader) ([]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []float64
	for n := 1; sc.Scan(); n++ {
		v, ok, err := parseStrict(sc.Text(), n)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return out, nil
}

// ImportValues reads a value artifact from path. Files ending in .xlsx are
// read as spreadsheets, everything else as text.
func ImportValues(path string, strict bool) ([]float64, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ImportValuesXLSX(path, strict)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, bmerrors.Wrap(bmerrors.ErrCodeFileNotFound, err, "values file %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strict {
		return ReadValuesStrict(f)
	}
	return ReadValues(f)
}

func parseStrict(s string, line int) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	v := ParseNumber(s)
	if math.IsNaN(v) && s != "NaN" {
		return 0, false, bmerrors.New(bmerrors.ErrCodeInvalidInput, "line %d: %q is not a number", line, s)
	}
	return v, true, nil
}

// ParseNumber converts text to a number with JavaScript Number() rules:
// surrounding whitespace is ignored, the empty string is 0, "Infinity"
// and 0x/0o/0b integer prefixes are accepted, and anything else that is
// not a decimal literal is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(u)
		}
	}

	// strconv accepts spellings that Number() does not.
	if strings.ContainsAny(s, "_xXpPiInN") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

// FormatNumber prints v the way JavaScript's Number.prototype.toString does
// for base 10.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
