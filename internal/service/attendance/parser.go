package attendance

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

type column int

const (
	colIdentifier column = iota
	colName
	colMode
	colDirection
	colTimestamp
	colDate
	colTime
	colDevice
)

// headerAliases maps normalized header labels found in time-clock exports to columns.
var headerAliases = map[string]column{
	"no":           colIdentifier,
	"employeeno":   colIdentifier,
	"acno":         colIdentifier,
	"enno":         colIdentifier,
	"pin":          colIdentifier,
	"id":           colIdentifier,
	"userid":       colIdentifier,
	"identifier":   colIdentifier,
	"biometricid":  colIdentifier,
	"cardid":       colIdentifier,
	"cardno":       colIdentifier,
	"badge":        colIdentifier,
	"name":         colName,
	"employeename": colName,
	"nama":         colName,
	"mode":         colMode,
	"verifymode":   colMode,
	"event":        colMode,
	"eventtype":    colMode,
	"inout":        colDirection,
	"io":           colDirection,
	"direction":    colDirection,
	"state":        colDirection,
	"datetime":     colTimestamp,
	"timestamp":    colTimestamp,
	"checktime":    colTimestamp,
	"waktu":        colTimestamp,
	"date":         colDate,
	"tanggal":      colDate,
	"time":         colTime,
	"jam":          colTime,
	"device":       colDevice,
	"deviceid":     colDevice,
	"machine":      colDevice,
	"terminal":     colDevice,
}

// positionalLayout is used for headerless exports:
// employee no, name, mode, in/out, date-time.
var positionalLayout = map[column]int{
	colIdentifier: 0,
	colName:       1,
	colMode:       2,
	colDirection:  3,
	colTimestamp:  4,
}

var candidateDelimiters = []rune{',', ';', '\t', '|'}

// ParseBatch decodes a raw payload of the given format into raw records.
func ParseBatch(format attendance.BatchFormat, payload []byte) ([]attendance.RawRecord, error) {
	switch format {
	case attendance.BatchFormatDelimited:
		return ParseDelimited(bytes.NewReader(payload))
	case attendance.BatchFormatSpreadsheet:
		return ParseSpreadsheet(bytes.NewReader(payload))
	case attendance.BatchFormatEvents:
		events, err := ParseEvents(payload)
		if err != nil {
			return nil, err
		}
		return EventsToRecords(events)
	default:
		return nil, fmt.Errorf("%w: %q", attendance.ErrUnsupportedFormat, format)
	}
}

// ParseDelimited reads a delimited text export. The delimiter is detected from
// the first line; a header row is optional.
func ParseDelimited(r io.Reader) ([]attendance.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrUnparseableBatch, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, attendance.ErrEmptyBatch
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	var lines []int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", attendance.ErrUnparseableBatch, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return recordsFromRows(rows, lines, identity)
}

// ParseSpreadsheet reads the first sheet of an .xlsx workbook. Date cells are
// read raw and converted from Excel serial numbers.
func ParseSpreadsheet(r io.Reader) ([]attendance.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrUnparseableBatch, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, attendance.ErrEmptyBatch
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrUnparseableBatch, err)
	}

	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return recordsFromRows(rows, lines, excelSerialToText)
}

// excelSerialToText converts Excel serial numbers in date and time columns
// into naive text ("45719.3819" becomes "2025-03-03 09:10:00"). Cells that
// already hold text are returned unchanged.
func excelSerialToText(col column, value string) string {
	if col != colTimestamp && col != colDate && col != colTime {
		return value
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 0 {
		return value
	}

	if col == colTime || serial < 1 {
		secs := int(math.Round(serial*86400)) % 86400
		return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	}

	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	t = t.Round(time.Second)
	if col == colDate {
		return t.Format(attendance.DateLayout)
	}
	return t.Format("2006-01-02 15:04:05")
}

func identity(_ column, value string) string {
	return value
}

type eventEnvelope struct {
	Events []attendance.StructuredEvent `json:"events"`
}

// ParseEvents accepts either a JSON array of events or an object with an "events" field.
func ParseEvents(payload []byte) ([]attendance.StructuredEvent, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, attendance.ErrEmptyBatch
	}

	var events []attendance.StructuredEvent
	if payload[0] == '[' {
		if err := json.Unmarshal(payload, &events); err != nil {
			return nil, fmt.Errorf("%w: %v", attendance.ErrUnparseableBatch, err)
		}
	} else {
		var env eventEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", attendance.ErrUnparseableBatch, err)
		}
		events = env.Events
	}

	if len(events) == 0 {
		return nil, attendance.ErrEmptyBatch
	}
	return events, nil
}

// EventsToRecords numbers structured events from 1 and maps them to raw records.
func EventsToRecords(events []attendance.StructuredEvent) ([]attendance.RawRecord, error) {
	if len(events) == 0 {
		return nil, attendance.ErrEmptyBatch
	}
	records := make([]attendance.RawRecord, len(events))
	for i, ev := range events {
		records[i] = ev.ToRawRecord(i + 1)
	}
	return records, nil
}

// recordsFromRows maps rows onto raw records; lines holds the source line of each row.
func recordsFromRows(rows [][]string, lines []int, convert func(column, string) string) ([]attendance.RawRecord, error) {
	first := firstNonBlank(rows)
	if first < 0 {
		return nil, attendance.ErrEmptyBatch
	}

	layout, isHeader := mapHeader(rows[first])
	start := first
	if isHeader {
		if err := checkRequiredColumns(layout); err != nil {
			return nil, err
		}
		start = first + 1
	} else {
		layout = positionalLayout
	}

	var records []attendance.RawRecord
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		get := func(col column) string {
			return convert(col, cell(row, layout, col))
		}
		rec := attendance.RawRecord{
			Line:       lines[i],
			Identifier: get(colIdentifier),
			Name:       get(colName),
			Mode:       get(colMode),
			Direction:  get(colDirection),
			Timestamp:  get(colTimestamp),
			DeviceID:   get(colDevice),
		}
		if rec.Timestamp == "" {
			rec.Timestamp = strings.TrimSpace(get(colDate) + " " + get(colTime))
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, attendance.ErrEmptyBatch
	}
	return records, nil
}

// mapHeader reports whether row is a header and, if so, which index holds each column.
func mapHeader(row []string) (map[column]int, bool) {
	layout := make(map[column]int)
	for i, h := range row {
		label := strings.ToLower(strings.TrimSpace(h))
		label = strings.NewReplacer(" ", "", "-", "", "_", "", ".", "", "/", "").Replace(label)
		col, ok := headerAliases[label]
		if !ok {
			continue
		}
		if _, seen := layout[col]; !seen {
			layout[col] = i
		}
	}
	_, hasID := layout[colIdentifier]
	_, hasTS := layout[colTimestamp]
	_, hasDate := layout[colDate]
	return layout, hasID || hasTS || hasDate
}

func checkRequiredColumns(layout map[column]int) error {
	if _, ok := layout[colIdentifier]; !ok {
		return fmt.Errorf("%w: employee identifier", attendance.ErrMissingColumn)
	}
	if _, ok := layout[colTimestamp]; ok {
		return nil
	}
	if _, ok := layout[colDate]; ok {
		return nil
	}
	return fmt.Errorf("%w: date-time", attendance.ErrMissingColumn)
}

func cell(row []string, layout map[column]int, col column) string {
	idx, ok := layout[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func firstNonBlank(rows [][]string) int {
	for i, row := range rows {
		if !isBlank(row) {
			return i
		}
	}
	return -1
}

// detectDelimiter picks the candidate that occurs most often on the first line.
func detectDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
