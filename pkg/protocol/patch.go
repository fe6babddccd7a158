package protocol

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/hyper/pkg/vdom"
)

// PatchOp is the type of patch operation. Values match vdom.PatchOp.
type PatchOp uint8

const (
	PatchSetText        PatchOp = 0x01 // Update text content
	PatchSetAttr        PatchOp = 0x02 // Set attribute
	PatchRemoveAttr     PatchOp = 0x03 // Remove attribute
	PatchInsertNode     PatchOp = 0x04 // Insert new node
	PatchRemoveNode     PatchOp = 0x05 // Remove node
	PatchMoveNode       PatchOp = 0x06 // Move node
	PatchReplaceNode    PatchOp = 0x07 // Replace node
	PatchSetValue       PatchOp = 0x08 // Set input value
	PatchSetChecked     PatchOp = 0x09 // Set checkbox checked
	PatchSetSelected    PatchOp = 0x0A // Set select option selected
	PatchSetStyle       PatchOp = 0x0C // Set style property
	PatchRemoveStyle    PatchOp = 0x0D // Remove style property
	PatchSetListener    PatchOp = 0x0E // Start reporting an event
	PatchRemoveListener PatchOp = 0x0F // Stop reporting an event
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	return vdom.PatchOp(op).String()
}

// Patch represents a single DOM operation.
type Patch struct {
	Op       PatchOp
	HID      string     // Target node
	Key      string     // Attribute, style property or event name
	Value    string     // Text, attribute, style or input value
	ParentID string     // Parent HID for InsertNode/MoveNode
	Index    int        // Insert/Move position
	Node     *VNodeWire // For InsertNode/ReplaceNode
	Bool     bool       // For SetChecked/SetSelected
}

// PatchesFrame is a batch of patches with a sequence number.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// FromVDOM converts a patch produced by vdom.Diff. Handlers are reduced to
// their event names.
func FromVDOM(p vdom.Patch) Patch {
	w := Patch{
		Op:       PatchOp(p.Op),
		HID:      p.HID,
		Key:      p.Key,
		Value:    p.Value,
		ParentID: p.ParentID,
		Index:    p.Index,
	}
	switch p.Op {
	case vdom.PatchInsertNode, vdom.PatchReplaceNode:
		w.Node = VNodeToWire(p.Node)
	case vdom.PatchSetChecked, vdom.PatchSetSelected:
		w.Bool, _ = strconv.ParseBool(p.Value)
		w.Value = ""
	}
	return w
}

// ToVDOM converts a decoded patch for dom.Document.Apply. SetListener
// patches carry the event name as their handler.
func (p Patch) ToVDOM() vdom.Patch {
	v := vdom.Patch{
		Op:       vdom.PatchOp(p.Op),
		HID:      p.HID,
		Key:      p.Key,
		Value:    p.Value,
		ParentID: p.ParentID,
		Index:    p.Index,
		Node:     p.Node.ToVNode(),
	}
	switch p.Op {
	case PatchSetChecked, PatchSetSelected:
		v.Value = strconv.FormatBool(p.Bool)
	case PatchSetListener:
		v.Handler = p.Key
	}
	return v
}

// EncodePatches encodes a patches frame payload.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
	return e.Bytes()
}

func encodePatch(e *Encoder, p *Patch) {
	e.WriteByte(byte(p.Op))
	e.WriteString(p.HID)

	switch p.Op {
	case PatchSetText, PatchSetValue:
		e.WriteString(p.Value)

	case PatchSetAttr, PatchSetStyle:
		e.WriteString(p.Key)
		e.WriteString(p.Value)

	case PatchRemoveAttr, PatchRemoveStyle, PatchSetListener, PatchRemoveListener:
		e.WriteString(p.Key)

	case PatchInsertNode:
		e.WriteString(p.ParentID)
		e.WriteUvarint(uint64(p.Index))
		encodeVNode(e, p.Node)

	case PatchRemoveNode:
		// HID is sufficient

	case PatchMoveNode:
		e.WriteString(p.ParentID)
		e.WriteUvarint(uint64(p.Index))

	case PatchReplaceNode:
		encodeVNode(e, p.Node)

	case PatchSetChecked, PatchSetSelected:
		e.WriteBool(p.Bool)
	}
}

// DecodePatches decodes a patches frame payload. Unknown operations are an
// error: their operands cannot be skipped.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}

	patches := make([]Patch, count)
	for i := range patches {
		if err := decodePatch(d, &patches[i]); err != nil {
			return nil, fmt.Errorf("protocol: patch %d: %w", i, err)
		}
	}
	return &PatchesFrame{Seq: seq, Patches: patches}, nil
}

func decodePatch(d *Decoder, p *Patch) error {
	opByte, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = PatchOp(opByte)

	if p.HID, err = d.ReadString(); err != nil {
		return err
	}

	switch p.Op {
	case PatchSetText, PatchSetValue:
		p.Value, err = d.ReadString()

	case PatchSetAttr, PatchSetStyle:
		if p.Key, err = d.ReadString(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()

	case PatchRemoveAttr, PatchRemoveStyle, PatchSetListener, PatchRemoveListener:
		p.Key, err = d.ReadString()

	case PatchInsertNode:
		if p.ParentID, err = d.ReadString(); err != nil {
			return err
		}
		if p.Index, err = readIndex(d); err != nil {
			return err
		}
		p.Node, err = decodeNodeOperand(d)

	case PatchRemoveNode:

	case PatchMoveNode:
		if p.ParentID, err = d.ReadString(); err != nil {
			return err
		}
		p.Index, err = readIndex(d)

	case PatchReplaceNode:
		p.Node, err = decodeNodeOperand(d)

	case PatchSetChecked, PatchSetSelected:
		p.Bool, err = d.ReadBool()

	default:
		return fmt.Errorf("unknown op 0x%02x", opByte)
	}
	return err
}

func readIndex(d *Decoder) (int, error) {
	idx, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if idx > MaxCollectionCount {
		return 0, ErrCollectionTooLarge
	}
	return int(idx), nil
}

func decodeNodeOperand(d *Decoder) (*VNodeWire, error) {
	n, err := decodeVNode(d, 0)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrInvalidNodeKind
	}
	return n, nil
}
