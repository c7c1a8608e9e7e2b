package ndjson_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/domains/backup/ndjson"
)

func TestParse_MixedContent(t *testing.T) {
	content := strings.Join([]string{
		`{"id":"r1","checkIn":"2025-06-01"}`,
		`not json at all`,
		``,
		`{"id":"r2","extra":{"nested":true}}`,
		`null`,
		`   `,
		`{"id":"r3"}`,
	}, "\n")

	result := ndjson.Parse([]byte(content))

	require.Len(t, result.Records, 3)
	require.Len(t, result.Errors, 2)

	// Line numbers are 1-based and count blank lines.
	assert.Equal(t, 2, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "invalid JSON")
	assert.Equal(t, 5, result.Errors[1].Line)
	assert.Equal(t, "line is not a JSON object", result.Errors[1].Message)

	assert.Equal(t, json.RawMessage(`"r1"`), result.Records[0]["id"])
	assert.Equal(t, json.RawMessage(`{"nested":true}`), result.Records[1]["extra"])
	assert.Equal(t, json.RawMessage(`"r3"`), result.Records[2]["id"])
}

func TestParse_EmptyInput(t *testing.T) {
	result := ndjson.Parse(nil)

	assert.Empty(t, result.Records)
	assert.Empty(t, result.Errors)
}

func TestParse_BlankLinesOnly(t *testing.T) {
	result := ndjson.Parse([]byte("\n\n   \n"))

	assert.Empty(t, result.Records)
	assert.Empty(t, result.Errors)
}

func TestParse_TrailingNewline(t *testing.T) {
	result := ndjson.Parse([]byte(`{"id":"r1"}` + "\n"))

	require.Len(t, result.Records, 1)
	assert.Empty(t, result.Errors)
}

func TestParse_OversizedLine(t *testing.T) {
	// A single record may legally span megabytes; only the total upload is
	// capped, so a huge line must parse and must not starve later lines.
	bigLine := `{"id":"big","blob":"` + strings.Repeat("x", 2<<20) + `"}`
	content := bigLine + "\n" + `{"id":"small"}`

	result := ndjson.Parse([]byte(content))

	require.Len(t, result.Records, 2)
	assert.Empty(t, result.Errors)
	assert.Equal(t, json.RawMessage(`"big"`), result.Records[0]["id"])
	assert.Equal(t, json.RawMessage(`"small"`), result.Records[1]["id"])
}

func TestParse_ScalarLineIsError(t *testing.T) {
	result := ndjson.Parse([]byte(`42`))

	assert.Empty(t, result.Records)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Line)
}
