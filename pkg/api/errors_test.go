package api

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		key     string
		want    Format
		wantErr bool
	}{
		{"xml", FormatXML, false},
		{"html", FormatHTML, false},
		{"json", FormatJSON, false},
		{" JSON ", FormatJSON, false},
		{"Html", FormatHTML, false},
		{"csv", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseFormat(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) expected error", tt.key)
				}
				if !IsUnsupportedFormat(err) {
					t.Errorf("ParseFormat(%q) error = %v, want UnsupportedFormatError", tt.key, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) unexpected error: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestMIMEType(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatXML, "application/sparql-results+xml"},
		{FormatHTML, "text/html"},
		{FormatJSON, "application/sparql-results+json"},
	}
	for _, tt := range tests {
		got, ok := MIMEType(tt.format)
		if !ok {
			t.Fatalf("MIMEType(%q) not found", tt.format)
		}
		if got != tt.want {
			t.Errorf("MIMEType(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}

	if _, ok := MIMEType(Format("turtle")); ok {
		t.Error("MIMEType(turtle) should not be known")
	}
}

func TestQueryExecutionError(t *testing.T) {
	cause := errors.New("unexpected token '!!!'")
	err := NewQueryExecutionError("INVALID SYNTAX !!!", cause)

	if !IsQueryExecution(err) {
		t.Fatal("expected IsQueryExecution to be true")
	}
	if !errors.Is(err, cause) {
		t.Error("expected error chain to contain the cause")
	}
	if !strings.Contains(err.Error(), "unexpected token") {
		t.Errorf("Error() = %q, want cause message", err.Error())
	}

	var qe *QueryExecutionError
	if !errors.As(err, &qe) {
		t.Fatal("errors.As failed")
	}
	if qe.Query != "INVALID SYNTAX !!!" {
		t.Errorf("Query = %q", qe.Query)
	}

	trace := fmt.Sprintf("%+v", err)
	if !strings.Contains(trace, "errors_test.go") {
		t.Errorf("%%+v output should include a stack trace, got:\n%s", trace)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unsupported", NewUnsupportedFormatError("csv"), "unsupported_format"},
		{"query", NewQueryExecutionError("q", errors.New("boom")), "query_execution"},
		{"wrapped query", errors.Wrap(NewQueryExecutionError("q", errors.New("boom")), "responding"), "query_execution"},
		{"missing", errors.WithStack(ErrMissingQuery), "missing_query"},
		{"other", errors.New("disk on fire"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
