package api

import "strings"

// Format is a logical result serialization format.
type Format string

const (
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// DefaultFormat is used when no request signal selects a format.
const DefaultFormat = FormatXML

// MIME types known to the endpoint.
const (
	MIMESPARQLResultsXML  = "application/sparql-results+xml"
	MIMESPARQLResultsJSON = "application/sparql-results+json"
	MIMEHTML              = "text/html"
	MIMEJSON              = "application/json"
)

// formatMIME is the fixed format -> MIME type table.
var formatMIME = map[Format]string{
	FormatXML:  MIMESPARQLResultsXML,
	FormatHTML: MIMEHTML,
	FormatJSON: MIMESPARQLResultsJSON,
}

// ParseFormat maps a format key to a Format. Keys are matched
// case-insensitively after trimming whitespace. Unknown keys yield an
// UnsupportedFormatError.
func ParseFormat(key string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(key)))
	if _, ok := formatMIME[f]; !ok {
		return "", NewUnsupportedFormatError(key)
	}
	return f, nil
}

// MIMEType returns the MIME type for a format and whether the format is
// known.
func MIMEType(f Format) (string, bool) {
	m, ok := formatMIME[f]
	return m, ok
}

// Formats returns every known format in a stable order.
func Formats() []Format {
	return []Format{FormatXML, FormatHTML, FormatJSON}
}

// String implements fmt.Stringer.
func (f Format) String() string { return string(f) }
