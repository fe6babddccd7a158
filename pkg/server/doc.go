// Package server runs hyper apps for remote clients over WebSocket.
//
// Each connection gets a Session: its own dom.Document with a mount
// element, and one app.App built by the server's AppFactory. The document
// is the source of truth; the client holds a mirror of it.
//
// # Session Lifecycle
//
//  1. The connection is upgraded and a Session is created.
//  2. A Hello frame carries the session ID and the HID of the body.
//  3. The app is mounted. Its first render is sent as one InsertNode of
//     the mount root into the body, so the mirror shares the server's HIDs.
//  4. Every later render is sent as a Patches frame. SetListener patches
//     the client already knows of are dropped.
//  5. Event frames are dispatched through the session document, which
//     runs the bound actions.
//  6. Close unmounts the app, which cancels its subscriptions.
//
// The session runs three goroutines:
//   - ReadLoop: Receives WebSocket frames, answers pings, queues events
//   - EventLoop: Dispatches queued events one at a time
//   - WriteLoop: Sends heartbeat pings
//
// Subscriptions dispatch from their own goroutines; the app serializes
// those dispatches with the event loop's.
//
// # Example Usage
//
//	srv, err := server.New(nil, func(string) app.Config {
//	    return app.Config{Init: 0, View: counterView}
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
//
// # Thread Safety
//
//   - Session.mu serializes WebSocket writes
//   - The events channel serializes client events
//   - SessionManager uses an RWMutex for the session map
package server
