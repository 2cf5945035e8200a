package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/inconshreveable/log15"
)

func TestErrorCreation(t *testing.T) {
	err := E(Op("accession.Add"), KindInvalidAccession, "bad accession")

	if err.Op != "accession.Add" {
		t.Errorf("expected Op 'accession.Add', got %q", err.Op)
	}
	if err.Kind != KindInvalidAccession {
		t.Errorf("expected Kind KindInvalidAccession, got %v", err.Kind)
	}
	if err.Msg != "bad accession" {
		t.Errorf("expected Msg 'bad accession', got %q", err.Msg)
	}
}

func TestErrorWithWrappedError(t *testing.T) {
	underlying := fmt.Errorf("connection refused")
	err := E(Op("request.Do"), KindUpstream, underlying, "POST search")

	if err.Err != underlying {
		t.Error("expected underlying error to be set")
	}

	errStr := err.Error()
	for _, want := range []string{"request.Do", "POST search", "connection refused"} {
		if !strings.Contains(errStr, want) {
			t.Errorf("error string should contain %q, got %q", want, errStr)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	underlying := fmt.Errorf("root cause")
	err := E(Op("test"), underlying)

	if err.Unwrap() != underlying {
		t.Error("Unwrap should return the underlying error")
	}
}

func TestErrorStringFormats(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"op only", &Error{Op: "test"}, "test: "},
		{"msg only", &Error{Msg: "failed"}, "failed"},
		{"err only", &Error{Err: fmt.Errorf("root")}, "root"},
		{"op and msg", &Error{Op: "test", Msg: "failed"}, "test: failed"},
		{"all fields", &Error{Op: "test", Msg: "failed", Err: fmt.Errorf("root")}, "test: failed: root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindUnknown, "unknown"},
		{KindUnrecognizedAccession, "unrecognized accession"},
		{KindInvalidAccession, "invalid accession"},
		{KindPartialMapping, "partial mapping"},
		{KindUpstream, "upstream request"},
		{KindParse, "response parse"},
		{KindConfig, "config"},
		{KindIO, "io"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap("test", nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	underlying := fmt.Errorf("test error")
	wrapped := Wrap("ena.ParseRunSet", underlying)
	if wrapped == nil {
		t.Fatal("Wrap should return non-nil for non-nil error")
	}

	appErr, ok := wrapped.(*Error)
	if !ok {
		t.Fatal("Wrap should return *Error")
	}
	if appErr.Op != "ena.ParseRunSet" {
		t.Errorf("expected Op 'ena.ParseRunSet', got %q", appErr.Op)
	}
}

func TestWrapKeepsKind(t *testing.T) {
	inner := E(Op("request.Do"), KindUpstream, "status 500")
	outer := Wrap("resolver.Resolve", inner)

	if !IsKind(outer, KindUpstream) {
		t.Errorf("expected wrapped error to keep KindUpstream, got %v", GetKind(outer))
	}
}

func TestWrapMsg(t *testing.T) {
	if WrapMsg("test", "msg", nil) != nil {
		t.Error("WrapMsg(nil) should return nil")
	}

	wrapped := WrapMsg("config.Load", "read failed", fmt.Errorf("test error"))
	if !strings.Contains(wrapped.Error(), "read failed") {
		t.Errorf("error should contain message, got %q", wrapped.Error())
	}
}

func TestIsKind(t *testing.T) {
	err := E(KindParse, "test")
	if !IsKind(err, KindParse) {
		t.Error("expected IsKind to return true for matching kind")
	}
	if IsKind(err, KindUpstream) {
		t.Error("expected IsKind to return false for non-matching kind")
	}
	if IsKind(fmt.Errorf("standard error"), KindParse) {
		t.Error("expected IsKind to return false for non-Error type")
	}
	if !IsKind(fmt.Errorf("context: %w", err), KindParse) {
		t.Error("expected IsKind to see through fmt wrapping")
	}
}

func TestGetKind(t *testing.T) {
	if kind := GetKind(E(KindUpstream, "test")); kind != KindUpstream {
		t.Errorf("expected KindUpstream, got %v", kind)
	}
	if kind := GetKind(fmt.Errorf("standard error")); kind != KindUnknown {
		t.Errorf("expected KindUnknown for non-Error, got %v", kind)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf("accession.Classify", KindUnrecognizedAccession, "could not match %q", "GSE1")
	if err.Error() != `accession.Classify: could not match "GSE1"` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestSkipCounter(t *testing.T) {
	sc := NewSkipCounter("test_operation")

	if sc.Count != 0 {
		t.Errorf("initial count should be 0, got %d", sc.Count)
	}

	sc.Skip(fmt.Errorf("error 1"), "item1")
	sc.Skip(fmt.Errorf("error 2"), "item2")
	sc.Skip(fmt.Errorf("error 3"), "item3")

	if sc.Count != 3 {
		t.Errorf("expected count 3, got %d", sc.Count)
	}
	if sc.LastErr == nil || sc.LastErr.Error() != "error 3" {
		t.Errorf("LastErr should be last error, got %v", sc.LastErr)
	}
	if sc.LastDetail != "item3" {
		t.Errorf("LastDetail should be 'item3', got %q", sc.LastDetail)
	}
}

func TestSkipCounterReport(t *testing.T) {
	var buf bytes.Buffer
	logger := log15.New()
	logger.SetHandler(log15.StreamHandler(&buf, log15.LogfmtFormat()))

	sc := NewSkipCounter("parse file links")
	sc.Report(logger)
	if buf.Len() != 0 {
		t.Errorf("expected no output without skips, got %q", buf.String())
	}

	sc.Skip(fmt.Errorf("err"), "SRR1")
	sc.Report(logger)
	if !strings.Contains(buf.String(), "parse file links skipped 1 items") {
		t.Errorf("expected skip summary, got %q", buf.String())
	}
}
