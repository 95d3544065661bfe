package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_WrappedStructuredError(t *testing.T) {
	base := NewError(KindMissingRequiredPart, "body required")
	err := fmt.Errorf("render: %w", base)

	if got := KindOf(err); got != KindMissingRequiredPart {
		t.Fatalf("expected %s, got %s", KindMissingRequiredPart, got)
	}
	if !IsKind(err, KindMissingRequiredPart) {
		t.Fatalf("IsKind: expected true")
	}
	if IsKind(err, KindMalformedRequest) {
		t.Fatalf("IsKind: expected false for other kind")
	}
}

func TestKindOf_UnstructuredAndNil(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Fatalf("expected empty kind for nil, got %q", got)
	}
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("expected %s, got %s", KindInternal, got)
	}
}

func TestWrapError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(KindOutputPersistenceFailure, "write document", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to reach the cause")
	}
	if err.Error() != "OUTPUT_PERSISTENCE_FAILURE: write document: disk full" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestUnsupportedContainer_CarriesDetected(t *testing.T) {
	err := UnsupportedContainer(".pdf", ".docx")
	var e *Error
	if !errors.As(error(err), &e) {
		t.Fatalf("expected *Error")
	}
	if e.Detected != ".pdf" || e.Kind != KindUnsupportedContainerFormat {
		t.Fatalf("unexpected error: %+v", e)
	}
}

func TestParseKind(t *testing.T) {
	if got := ParseKind("MALFORMED_REQUEST"); got != KindMalformedRequest {
		t.Fatalf("expected %s, got %s", KindMalformedRequest, got)
	}
	if got := ParseKind("NOPE"); got != KindInternal {
		t.Fatalf("expected %s for unknown kind, got %s", KindInternal, got)
	}
}

func TestValues_OfKind(t *testing.T) {
	vs := Values{Text("a", "1"), Image("b", 2), Text("c", "3")}
	text := vs.OfKind(TextValue)
	if len(text) != 2 || text[0].Key != "a" || text[1].Key != "c" {
		t.Fatalf("unexpected text values: %+v", text)
	}
	img := vs.OfKind(ImageValue)
	if len(img) != 1 || img[0].Value != "2" {
		t.Fatalf("unexpected image values: %+v", img)
	}
}
