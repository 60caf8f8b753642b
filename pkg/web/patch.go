package web

// PatchOp is the type of host mutation streamed to the client.
type PatchOp uint8

// Patch operation constants.
const (
	PatchCreateNode  PatchOp = 0x01 // Materialize a node (element or text)
	PatchSetText     PatchOp = 0x02 // Update a text node's content
	PatchSetAttr     PatchOp = 0x03 // Set attribute
	PatchRemoveAttr  PatchOp = 0x04 // Reset attribute to empty
	PatchSetStyle    PatchOp = 0x05 // Set style property
	PatchRemoveStyle PatchOp = 0x06 // Remove style property
	PatchListen      PatchOp = 0x07 // Subscribe node to an event type
	PatchUnlisten    PatchOp = 0x08 // Unsubscribe node from an event type
	PatchAppendChild PatchOp = 0x09 // Append node under parent
	PatchRemoveChild PatchOp = 0x0A // Remove node from parent
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchCreateNode:
		return "CreateNode"
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchSetStyle:
		return "SetStyle"
	case PatchRemoveStyle:
		return "RemoveStyle"
	case PatchListen:
		return "Listen"
	case PatchUnlisten:
		return "Unlisten"
	case PatchAppendChild:
		return "AppendChild"
	case PatchRemoveChild:
		return "RemoveChild"
	default:
		return "Unknown"
	}
}

// Patch is a single host mutation. Patches for one commit are flushed as one
// JSON frame so the client applies them atomically.
type Patch struct {
	Op     PatchOp `json:"op"`
	Node   uint64  `json:"node"`
	Parent uint64  `json:"parent,omitempty"`
	Tag    string  `json:"tag,omitempty"`
	Key    string  `json:"key,omitempty"`
	Value  string  `json:"value,omitempty"`
}

// PatchFrame is one commit's worth of patches.
type PatchFrame struct {
	Seq     uint64  `json:"seq"`
	Patches []Patch `json:"patches"`
}

// EventFrame is a client-to-server event notification.
type EventFrame struct {
	Node  uint64 `json:"node"`
	Event string `json:"event"`
}
