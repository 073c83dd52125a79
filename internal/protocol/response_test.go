package protocol

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestOKGetFoundSerializesValue(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, OKGet("v1", true)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded["status"] != "Ok" || decoded["result"] != "v1" {
		t.Fatalf("unexpected payload: %v", decoded)
	}
}

func TestOKGetNotFoundSerializesNull(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, OKGet("", false)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	result, hasKey := decoded["result"]
	if !hasKey || result != nil {
		t.Fatalf("expected explicit null result, got %v (present=%v)", result, hasKey)
	}
}

func TestOKBeginSerializesTransactionID(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, OKBegin(5)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded["transaction_id"] != float64(5) {
		t.Fatalf("unexpected transaction_id: %v", decoded["transaction_id"])
	}
}

func TestErrSerializesStatusAndMesg(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Err("Invalid transaction ID 999")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded["status"] != "Error" || decoded["mesg"] != "Invalid transaction ID 999" {
		t.Fatalf("unexpected payload: %v", decoded)
	}
}

func TestWriteTerminatesWithNewline(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, OK()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if buf.Bytes()[buf.Len()-1] != '\n' {
		t.Fatalf("expected response line to be newline-terminated")
	}
}
