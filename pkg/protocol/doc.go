// Package protocol implements the binary wire protocol between a hyper
// server session and a remote mirror.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Reserved     │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): session id and body HID, first server frame
//   - FrameEvent (0x01): Client → Server events
//   - FramePatches (0x02): Server → Client patches
//   - FrameControl (0x03): ping, pong, close
//   - FrameError (0x05): Error message
//
// # Encoding
//
// Integers are varints except fixed-width fields (error codes, ping
// timestamps), which are big-endian. Strings are varint length-prefixed.
//
// # Session Flow
//
//	Client                          Server
//	  │<──── Hello ───────────────────│
//	  │<──── Patches ─────────────────│  InsertNode(body, mount root)
//	  │──── Event ───────────────────>│  click on h7
//	  │<──── Patches ─────────────────│  SetText(h5, "1")
//
// The first Patches frame inserts a snapshot of the mounted root into the
// body, so the mirror reuses the server's HIDs from then on. Handlers never
// cross the wire; SetListener only names the event the mirror must report.
package protocol
