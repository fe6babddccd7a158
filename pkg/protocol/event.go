package protocol

// Event is a DOM event raised on the client for a listener the server
// bound.
//
// Wire format:
//
//	[Seq: varint][HID: string][Name: string][Value: string]
type Event struct {
	Seq   uint64 // Client-assigned, increasing
	HID   string // Target node
	Name  string // Event name, lower case ("click", "input")
	Value string // Target value for input and change events
}

// EncodeEvent encodes an event payload.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(ev.Seq)
	e.WriteString(ev.HID)
	e.WriteString(ev.Name)
	e.WriteString(ev.Value)
	return e.Bytes()
}

// DecodeEvent decodes an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev := &Event{}
	var err error
	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.HID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Value, err = d.ReadString(); err != nil {
		return nil, err
	}
	return ev, nil
}
