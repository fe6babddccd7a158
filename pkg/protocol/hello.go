package protocol

import "fmt"

// ProtocolVersion represents a protocol version as major.minor.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

// String returns "major.minor".
func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CurrentVersion is the version spoken by this package.
var CurrentVersion = ProtocolVersion{Major: 1, Minor: 0}

// Hello is the first frame a server sends on a new connection.
type Hello struct {
	Version   ProtocolVersion
	SessionID string
	Body      string // HID of the document body the first patch inserts into
}

// EncodeHello encodes a Hello payload.
func EncodeHello(h *Hello) []byte {
	e := NewEncoder()
	e.WriteByte(h.Version.Major)
	e.WriteByte(h.Version.Minor)
	e.WriteString(h.SessionID)
	e.WriteString(h.Body)
	return e.Bytes()
}

// DecodeHello decodes a Hello payload.
func DecodeHello(data []byte) (*Hello, error) {
	d := NewDecoder(data)
	h := &Hello{}
	var err error
	if h.Version.Major, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if h.Version.Minor, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if h.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.Body, err = d.ReadString(); err != nil {
		return nil, err
	}
	return h, nil
}
