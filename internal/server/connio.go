package server

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"storekv/internal/protocol"
)

// connState tracks, per connection, the transaction ids this connection has
// begun and not yet closed out with COMMIT or ROLLBACK — so a client that
// disconnects mid-transaction does not leave its locks held forever.
type connState struct {
	id    string
	began map[int64]struct{}
}

// HandleConnection reads UTF-8 lines from conn, dispatches each as a
// command, and writes one JSON response per line, until the connection is
// closed or an unrecoverable read error occurs. Parse errors and dispatch
// errors are reported to the client on the same connection; neither
// terminates the connection or the server, matching the error handling
// policy in spec.md §7.
func (d *Dispatcher) HandleConnection(conn net.Conn) {
	defer conn.Close()

	state := &connState{id: uuid.NewString(), began: make(map[int64]struct{})}
	remote := conn.RemoteAddr().String()
	slog.Info("client connected", "conn_id", state.id, "remote_addr", remote)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		cmd, err := protocol.Parse(line)
		if err != nil {
			slog.Warn("parse error", "conn_id", state.id, "line", line, "error", err)
			if writeErr := protocol.Write(conn, protocol.Err(err.Error())); writeErr != nil {
				slog.Error("failed to write parse error response", "conn_id", state.id, "error", writeErr)
				return
			}
			continue
		}

		if cmd.Verb == protocol.VerbBegin {
			resp := d.Dispatch(cmd)
			if tid, ok := resp["transaction_id"].(int64); ok {
				state.began[tid] = struct{}{}
			}
			if err := protocol.Write(conn, resp); err != nil {
				slog.Error("failed to write response", "conn_id", state.id, "error", err)
				return
			}
			continue
		}

		if (cmd.Verb == protocol.VerbCommit || cmd.Verb == protocol.VerbRollback) && cmd.TxnID != nil {
			delete(state.began, *cmd.TxnID)
		}

		resp := d.Dispatch(cmd)
		if err := protocol.Write(conn, resp); err != nil {
			slog.Error("failed to write response", "conn_id", state.id, "error", err)
			return
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("connection read error", "conn_id", state.id, "error", err)
	}

	d.rollbackAbandoned(state)
	slog.Info("client disconnected", "conn_id", state.id, "remote_addr", remote)
}

// rollbackAbandoned rolls back every transaction this connection began but
// never committed or rolled back explicitly, releasing its locks instead of
// leaking them for the rest of the process lifetime.
func (d *Dispatcher) rollbackAbandoned(state *connState) {
	for tid := range state.began {
		if err := d.engine.Rollback(tid); err != nil {
			slog.Debug("abandoned transaction already closed", "conn_id", state.id, "tid", tid, "error", err)
			continue
		}
		slog.Warn("connection closed mid-transaction, rolled back", "conn_id", state.id, "tid", tid)
	}
}
