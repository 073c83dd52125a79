// Package server implements the ambient collaborators the core engine is
// specified against but does not itself contain: the TCP listener, the
// per-connection command loop, and the glue between the textual protocol
// and the engine. None of this package holds store state of its own.
package server

import (
	"fmt"
	"log/slog"

	"storekv/internal/engine"
	"storekv/internal/protocol"
)

// Dispatcher turns one parsed Command into an engine call and a Response,
// the same role original_source/server/core/server.py's process_command
// plays, generalized off a single global DataStore onto an injected Engine.
type Dispatcher struct {
	engine *engine.Engine
}

// NewDispatcher returns a Dispatcher bound to e.
func NewDispatcher(e *engine.Engine) *Dispatcher {
	return &Dispatcher{engine: e}
}

// Dispatch executes cmd against the engine and returns the response to
// write back. It never returns a Go error: every failure mode the core can
// raise is mapped onto a protocol.Response per spec (ParseError never
// reaches here — parsing happens in the connection loop before Dispatch).
func (d *Dispatcher) Dispatch(cmd protocol.Command) protocol.Response {
	switch cmd.Verb {
	case protocol.VerbBegin:
		tid := d.engine.Begin()
		slog.Info("transaction began", "tid", tid)
		return protocol.OKBegin(tid)

	case protocol.VerbPut:
		tid, resp, ok := d.resolveTid(cmd)
		if !ok {
			return resp
		}
		if err := d.engine.Put(cmd.Key, cmd.Value, tid); err != nil {
			return protocol.Err(err.Error())
		}
		return protocol.OK()

	case protocol.VerbGet:
		tid, resp, ok := d.resolveTid(cmd)
		if !ok {
			return resp
		}
		v, found, err := d.engine.Get(cmd.Key, tid)
		if err != nil {
			return protocol.Err(err.Error())
		}
		return protocol.OKGet(v, found)

	case protocol.VerbDel:
		tid, resp, ok := d.resolveTid(cmd)
		if !ok {
			return resp
		}
		if err := d.engine.Delete(cmd.Key, tid); err != nil {
			return protocol.Err(err.Error())
		}
		return protocol.OK()

	case protocol.VerbCommit:
		tid, resp, ok := d.resolveTid(cmd)
		if !ok {
			return resp
		}
		if err := d.engine.Commit(tid); err != nil {
			return protocol.Err(err.Error())
		}
		slog.Info("transaction committed", "tid", tid)
		return protocol.OK()

	case protocol.VerbRollback:
		tid, resp, ok := d.resolveTid(cmd)
		if !ok {
			return resp
		}
		if err := d.engine.Rollback(tid); err != nil {
			return protocol.Err(err.Error())
		}
		slog.Info("transaction rolled back", "tid", tid)
		return protocol.OK()

	case protocol.VerbCommitAll:
		d.engine.CommitAll()
		return protocol.OK()

	case protocol.VerbShowAll:
		rows := d.engine.ShowAll()
		out := make(map[string]protocol.Row, len(rows))
		for k, r := range rows {
			out[k] = protocol.Row{Value: r.Value, TxnID: r.TxnID}
		}
		return protocol.OKShowAll(out)

	default:
		return protocol.Err("Unknown command")
	}
}

// resolveTid extracts cmd's transaction id, or builds the
// "Invalid transaction ID <tid>" error response spec.md §7 requires when
// none was supplied at all (a tid-bearing verb parsed without one).
func (d *Dispatcher) resolveTid(cmd protocol.Command) (int64, protocol.Response, bool) {
	if cmd.TxnID == nil {
		return 0, protocol.Err(fmt.Sprintf("Invalid transaction ID %s", "<none>")), false
	}
	return *cmd.TxnID, protocol.Response{}, true
}
