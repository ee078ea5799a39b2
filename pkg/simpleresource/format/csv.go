package format

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/tendant/simple-resource/pkg/simpleresource"
)

// CSV validates and decodes comma separated content.
//
// Parsing is permissive: quotes may be malformed and records may have any
// number of fields. Records whose field count differs from the header are
// dropped when decoding rather than reported.
type CSV struct{}

func (CSV) Family() simpleresource.Family { return simpleresource.FamilyCSV }

func (CSV) Matches(name string) bool { return hasExtension(name, ".csv") }

// Validate requires a header line plus at least one data line
func (c CSV) Validate(content []byte) error {
	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) < 2 {
		return &simpleresource.ValidationError{
			Family: c.Family(),
			Reason: "expected a header line and at least one data line",
		}
	}
	header, err := splitRecord(lines[0])
	if err != nil || len(header) == 0 {
		return &simpleresource.ValidationError{Family: c.Family(), Reason: "header line has no columns"}
	}
	return nil
}

// Decode returns the data rows as []Row
func (CSV) Decode(content []byte) (any, error) {
	table, err := DecodeTable(content)
	if err != nil {
		return nil, err
	}
	return table.Rows, nil
}

// Table is the structured view of CSV content
type Table struct {
	Header []string
	Rows   []Row
}

// DecodeTable parses content into a header and the rows that match it.
// Rows is never nil.
func DecodeTable(content []byte) (*Table, error) {
	r := newReader(bytes.NewReader(content))

	table := &Table{Rows: []Row{}}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &simpleresource.ValidationError{Family: simpleresource.FamilyCSV, Reason: err.Error()}
		}
		if table.Header == nil {
			if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
				continue
			}
			table.Header = record
			continue
		}
		if len(record) != len(table.Header) {
			continue
		}
		table.Rows = append(table.Rows, newRow(table.Header, record))
	}
	return table, nil
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

func splitRecord(line string) ([]string, error) {
	record, err := newReader(strings.NewReader(line)).Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return record, err
}

// Cell is one column of a row
type Cell struct {
	Column string
	Value  string
}

// Row is an ordered mapping from header name to cell value
type Row []Cell

func newRow(header, record []string) Row {
	row := make(Row, 0, len(header))
	index := make(map[string]int, len(header))
	for i, column := range header {
		// a repeated column keeps its first position and takes the later value
		if at, ok := index[column]; ok {
			row[at].Value = record[i]
			continue
		}
		index[column] = len(row)
		row = append(row, Cell{Column: column, Value: record[i]})
	}
	return row
}

// Get returns the value for column
func (r Row) Get(column string) (string, bool) {
	for _, cell := range r {
		if cell.Column == column {
			return cell.Value, true
		}
	}
	return "", false
}

// Map returns the row as an unordered map
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, cell := range r {
		m[cell.Column] = cell.Value
	}
	return m
}

// MarshalJSON encodes the row as a JSON object in header order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cell := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cell.Column)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(cell.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
