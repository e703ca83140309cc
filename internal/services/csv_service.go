package services

import (
	"bufio"
	"encoding/csv"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
)

// Record is one parsed CSV row keyed by normalized header name.
type Record map[string]string

type CSVService struct{}

func NewCSVService() *CSVService { return &CSVService{} }

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeHeader turns a raw CSV header into its canonical key: trimmed,
// one surrounding quote pair stripped, lower-cased, whitespace runs
// collapsed to underscores. " Code ID " becomes "code_id".
func NormalizeHeader(header string) string {
	h := strings.TrimSpace(header)
	if len(h) > 0 && (h[0] == '"' || h[0] == '\'') {
		h = h[1:]
	}
	if len(h) > 0 && (h[len(h)-1] == '"' || h[len(h)-1] == '\'') {
		h = h[:len(h)-1]
	}
	h = strings.ToLower(h)
	return whitespaceRun.ReplaceAllString(h, "_")
}

// DetectSeparator samples the first line of the file and picks the field
// separator: semicolon on a strict majority over commas, comma otherwise.
// The sample is the raw line, not a quote-aware parse; simple exports are
// the expected input.
func (s *CSVService) DetectSeparator(path string) (rune, error) {
	f, err := os.Open(path)
	if err != nil {
		return ',', &ParseError{Err: err}
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return ',', &ParseError{Err: err}
	}

	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';', nil
	}
	return ',', nil
}

// Parse streams the file row by row using the detected separator and returns
// the records plus the normalized header names in column order.
func (s *CSVService) Parse(path string) ([]Record, []string, error) {
	sep, err := s.DetectSeparator(path)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("CSV separator detected: %q", sep)

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rawHeader, err := r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}

	headers := make([]string, len(rawHeader))
	for i, h := range rawHeader {
		headers[i] = NormalizeHeader(h)
	}

	var records []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &ParseError{Err: err}
		}
		rec := make(Record, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, headers, nil
}
