package apicall

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ExpectResponseContent compares the last response body with expected. When both
// are valid JSON they are compared structurally, so key order and whitespace do not
// matter. A mismatch is reported with a unified diff.
func (b *CallBuilder) ExpectResponseContent(expected string) error {
	actual := b.ResponseContent()

	normalizedExpected, expectedIsJSON := normalizeJSON(expected)
	normalizedActual, actualIsJSON := normalizeJSON(actual)
	if expectedIsJSON && actualIsJSON {
		if normalizedExpected == normalizedActual {
			return nil
		}
		return fmt.Errorf("response JSON content mismatch:\n%s",
			unifiedDiff(normalizedExpected, normalizedActual, "Expected JSON (normalized)", "Actual JSON (normalized)"))
	}

	trimmedExpected := strings.TrimSpace(strings.ReplaceAll(expected, "\r\n", "\n"))
	trimmedActual := strings.TrimSpace(strings.ReplaceAll(actual, "\r\n", "\n"))
	if trimmedExpected == trimmedActual {
		return nil
	}
	return fmt.Errorf("response body mismatch:\n%s",
		unifiedDiff(trimmedExpected, trimmedActual, "Expected Body", "Actual Body"))
}

// normalizeJSON re-encodes s with sorted keys and indentation.
func normalizeJSON(s string) (string, bool) {
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return "", false
	}
	out, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return "", false
	}
	return string(out), true
}

func unifiedDiff(expected, actual, fromFile, toFile string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  3,
	}
	diffText, _ := difflib.GetUnifiedDiffString(diff)
	return diffText
}
