// Package ndjson parses newline-delimited JSON uploads. One malformed line
// never aborts the batch: it is recorded with its line number and parsing
// continues. Upload size is capped by the caller before this package runs.
package ndjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"innkeeper/internal/domains/reservation/schema"
	"innkeeper/shared/constant"
)

type ParseError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ParseResult struct {
	Records []schema.RawRecord
	Errors  []ParseError
}

// Parse splits content on newlines and decodes each non-blank line as one
// JSON object. Blank lines are skipped silently; a line that fails to decode,
// or decodes to something other than an object, produces a ParseError and
// parsing moves on.
func Parse(content []byte) ParseResult {
	result := ParseResult{
		Records: []schema.RawRecord{},
		Errors:  []ParseError{},
	}

	// A single line may legally span the whole upload, so the line buffer is
	// allowed to grow up to the upload cap enforced at the boundary.
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), constant.RestoreMaxUploadBytes)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		line := scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}

		var raw schema.RawRecord
		if err := json.Unmarshal(line, &raw); err != nil {
			result.Errors = append(result.Errors, ParseError{
				Line:    lineNumber,
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})

			continue
		}

		// JSON null decodes into a nil map without error.
		if raw == nil {
			result.Errors = append(result.Errors, ParseError{
				Line:    lineNumber,
				Message: "line is not a JSON object",
			})

			continue
		}

		result.Records = append(result.Records, raw)
	}

	if err := scanner.Err(); err != nil {
		result.Errors = append(result.Errors, ParseError{
			Line:    lineNumber + 1,
			Message: fmt.Sprintf("failed to read input: %v", err),
		})
	}

	return result
}
