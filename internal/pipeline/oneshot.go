package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"monito/internal"
)

// InferInputType guesses the input type from a file extension.
func InferInputType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return "xlsx"
	case ".csv":
		return "csv"
	case ".pdf":
		return "pdf"
	case ".eml":
		return "eml"
	case ".html", ".htm":
		return "html"
	}
	return "text"
}

// ExtractRowsFromInput reads rows from a file of the given type. For "text"
// and "html" an input that is not an existing file is parsed as content.
func ExtractRowsFromInput(inputType string, input string) ([]internal.ExtractedRow, error) {
	switch inputType {
	case "text", "email_text":
		return parseTextLines(internal.SourceText, readOrInline(input)), nil
	case "html", "email_table":
		return parseHTMLTables(readOrInline(input)), nil
	case "xlsx":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		return parseXLSX(blob)
	case "csv":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		return parseCSV(bytes.NewReader(blob))
	case "pdf":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		return parsePDF(blob)
	case "eml":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		parsed, err := ExtractRowsFromEmailRaw(blob)
		if err != nil {
			return nil, err
		}
		return parsed.Rows, nil
	default:
		return nil, fmt.Errorf("unsupported input type: %s", inputType)
	}
}

func readOrInline(input string) string {
	if blob, err := os.ReadFile(input); err == nil {
		return string(blob)
	}
	return input
}
