// =============================================================================
// Production Sorter - CSV Parser Module
// =============================================================================
//
// This module is responsible for loading the delimited export into an
// in-memory table. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Different encodings (UTF-8 with or without BOM, UTF-16, Windows-1252,
//     ISO-8859-1, Shift_JIS)
//   - Quoted fields
//   - Source line numbers for error reporting
//
// ERRORS:
//   - types.ErrFileNotFound when the path does not exist
//   - types.ErrLoad for every other failure (permissions, encoding, quoting)
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/types"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents the parsed CSV file.
// It is never modified after Parse returns, so several report pipelines can
// read it at the same time.
type CSVData struct {
	// Headers contains the column headers from the CSV file.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	Rows []map[string]string

	// LineNumbers holds the 1-based source line of each entry in Rows.
	LineNumbers []int

	// SourceFile is the path to the source CSV file.
	SourceFile string

	// RowCount is the total number of data rows (excluding headers).
	RowCount int

	// ColumnCount is the number of columns in the CSV.
	ColumnCount int

	index map[string]struct{}
}

// HasColumn reports whether the header row contains name.
func (d *CSVData) HasColumn(name string) bool {
	if d.index == nil {
		for _, h := range d.Headers {
			if h == name {
				return true
			}
		}
		return false
	}
	_, ok := d.index[name]
	return ok
}

// ResolveColumn returns the first of the candidate names present in the
// header row.
func (d *CSVData) ResolveColumn(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if d.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}

func (d *CSVData) buildIndex() {
	d.index = make(map[string]struct{}, len(d.Headers))
	for _, h := range d.Headers {
		d.index[h] = struct{}{}
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding settings.
//
// RETURNS:
//   - A pointer to the CSVData struct containing the parsed data.
//   - An error wrapping types.ErrFileNotFound or types.ErrLoad.
func Parse(filePath string, settings config.CSVSettings) (*CSVData, error) {
	// Open the file.
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrFileNotFound, filePath)
		}
		return nil, fmt.Errorf("%w: %w", types.ErrLoad, err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// ParseReader parses CSV content from r.
func ParseReader(r io.Reader, settings config.CSVSettings) (*CSVData, error) {
	decoder, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrLoad, err)
	}

	// Create the CSV reader over the decoded stream.
	csvReader := csv.NewReader(bufio.NewReader(transform.NewReader(r, decoder)))
	configureReader(csvReader, settings)

	// Read the header row.
	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: CSV file is empty", types.ErrLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %w", types.ErrLoad, err)
	}
	headers := cleanHeaders(header)

	data := &CSVData{
		Headers:     headers,
		Rows:        []map[string]string{},
		LineNumbers: []int{},
		ColumnCount: len(headers),
	}
	data.buildIndex()

	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read CSV: %w", types.ErrLoad, err)
		}

		// Skip empty rows.
		if isRowEmpty(row) {
			continue
		}

		line, _ := csvReader.FieldPos(0)

		// Convert the row to a map.
		rowMap := make(map[string]string, len(headers))
		for colIndex, h := range headers {
			if colIndex < len(row) {
				rowMap[h] = strings.TrimSpace(row[colIndex])
			} else {
				// Column is missing in this row.
				rowMap[h] = ""
			}
		}

		data.Rows = append(data.Rows, rowMap)
		data.LineNumbers = append(data.LineNumbers, line)
	}

	data.RowCount = len(data.Rows)
	return data, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	// Set the delimiter.
	// Handle special cases for common delimiters.
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports occasionally end rows early; missing cells are read as "".
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// decoderFor returns the transformer that turns the named encoding into UTF-8.
func decoderFor(encoding string) (transform.Transformer, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(encoding), "_", "-")) {
	case "", "UTF-8", "UTF8":
		// Strips a UTF-8 BOM and honours a UTF-16 BOM if present.
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "UTF-16", "UTF16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "SHIFT-JIS", "SJIS":
		return japanese.ShiftJIS.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// cleanHeaders trims whitespace and names empty headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
