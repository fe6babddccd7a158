package server

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/hyper/pkg/protocol"
)

// ReadLoop continuously reads messages from the WebSocket connection.
// It decodes frames, answers control messages, and queues events.
// This method blocks until the connection is closed or an error occurs.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) && !s.closed.Load() {
				s.logger.Error("read error", "error", err)
				s.recordError("read")
			}
			return
		}

		s.UpdateLastActive()
		s.bytesRecv.Add(uint64(len(msg)))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			s.recordError("decode")
			s.sendErrorMessage(protocol.NewError(protocol.ErrInvalidFrame, err.Error()))
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame.Payload)

		case protocol.FrameControl:
			if !s.handleControlFrame(frame.Payload) {
				return
			}

		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

// handleEventFrame decodes and queues an event from the client.
func (s *Session) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Error("event decode error", "error", err)
		s.recordError("decode")
		s.sendErrorMessage(protocol.NewError(protocol.ErrInvalidEvent, "Invalid event format"))
		return
	}

	if last := s.recvSeq.Load(); ev.Seq != 0 && ev.Seq <= last {
		s.logger.Debug("out of order event", "seq", ev.Seq, "last", last)
	}
	s.recvSeq.Store(ev.Seq)

	if err := s.QueueEvent(ev); err != nil {
		s.sendErrorMessage(protocol.NewError(protocol.ErrRateLimited, "Event queue full"))
	}
}

// handleControlFrame handles ping, pong and close. It returns false when
// the client asked to close.
func (s *Session) handleControlFrame(payload []byte) bool {
	c, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Error("control decode error", "error", err)
		s.recordError("decode")
		return true
	}

	switch c.Type {
	case protocol.ControlPing:
		s.sendPong(c.Timestamp)

	case protocol.ControlPong:
		s.logger.Debug("received pong", "rtt", time.Since(time.UnixMilli(int64(c.Timestamp))))

	case protocol.ControlClose:
		s.logger.Info("client closing", "reason", c.Reason, "message", c.Message)
		return false
	}
	return true
}

// sendPong sends a pong response.
func (s *Session) sendPong(timestamp uint64) {
	if err := s.writeFrame(protocol.FrameControl, protocol.EncodeControl(protocol.NewPong(timestamp))); err != nil && err != ErrSessionClosed {
		s.logger.Error("pong error", "error", err)
	}
}

// sendPing sends a heartbeat ping to the client.
func (s *Session) sendPing() error {
	err := s.writeFrame(protocol.FrameControl, protocol.EncodeControl(protocol.NewPing(uint64(time.Now().UnixMilli()))))
	if err != nil && err != ErrSessionClosed {
		s.logger.Error("ping error", "error", err)
		s.recordError("write")
	}
	return err
}

// WriteLoop sends heartbeat pings until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				s.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}

// EventLoop dispatches queued events one at a time until the session is
// closed.
func (s *Session) EventLoop() {
	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)

		case <-s.done:
			return
		}
	}
}
