package protocol

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Status is the outcome reported in every response envelope.
type Status string

const (
	StatusOk    Status = "Ok"
	StatusError Status = "Error"
)

// Row is one SHOWALL entry: the committed value and, best-effort, the id of
// a live transaction buffering a change to that key.
type Row struct {
	Value string `json:"value"`
	TxnID *int64 `json:"transaction_id"`
}

// Response is a plain field map rather than a fixed struct, mirroring
// original_source/server/core/server.py's process_command, which returns a
// bare dict per branch ({'status': 'Ok', 'transaction_id': ...} for BEGIN,
// {'status': 'Ok', 'result': ...} for GET, and so on) instead of one
// struct with every field optional. This keeps each response's JSON shape
// exactly the fields that operation defines, no stray nulls.
type Response map[string]any

// OK builds a bare success envelope.
func OK() Response {
	return Response{"status": StatusOk}
}

// OKBegin builds the BEGIN success envelope.
func OKBegin(tid int64) Response {
	return Response{"status": StatusOk, "transaction_id": tid}
}

// OKGet builds the GET success envelope. found=false serializes "result" as
// JSON null, matching the wire contract for a missing key.
func OKGet(value string, found bool) Response {
	if !found {
		return Response{"status": StatusOk, "result": nil}
	}
	return Response{"status": StatusOk, "result": value}
}

// OKShowAll builds the SHOWALL success envelope.
func OKShowAll(data map[string]Row) Response {
	if data == nil {
		data = map[string]Row{}
	}
	return Response{"status": StatusOk, "data": data}
}

// Err builds an error envelope with the given message.
func Err(mesg string) Response {
	return Response{"status": StatusError, "mesg": mesg}
}

// Write serializes resp as a single line of JSON terminated by a newline,
// one send per response per the wire protocol's framing.
func Write(w io.Writer, resp Response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
