package session

import (
	"encoding/json"
	"fmt"
)

// Message type tags on the wire.
const (
	msgHandshake       = "handshake"
	msgRoleAssignment  = "role_assignment"
	msgRoleChanged     = "role_changed"
	msgGameState       = "game_state"
	msgGameStateUpdate = "game_state_update"
	msgReleaseMaster   = "release_master"
	msgError           = "error"
)

// Promotion/demotion reasons.
const (
	reasonMasterReleased     = "master_released"
	reasonMasterDisconnected = "master_disconnected"
)

// inbound is the tagged union of client-to-server messages. Raw frames
// are decoded at the boundary; anything that does not match a known
// shape is dropped by the dispatcher.
type inbound struct {
	Type        string
	ClientType  ClientType
	MasterToken string
	Data        map[string]any
}

// parseInbound decodes a raw frame. A payload without a type tag is the
// legacy shape: a bare game-state object, treated as a state update.
func parseInbound(raw []byte) (*inbound, error) {
	var envelope map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	if envelope == nil {
		return nil, fmt.Errorf("malformed frame: null payload")
	}

	msgType, _ := envelope["type"].(string)

	switch msgType {
	case msgHandshake:
		msg := &inbound{Type: msgHandshake, ClientType: TypeDisplay}
		if ct, ok := envelope["client_type"].(string); ok && ct != "" {
			msg.ClientType = ClientType(ct)
		}
		if token, ok := envelope["masterToken"].(string); ok {
			msg.MasterToken = token
		}
		return msg, nil

	case msgReleaseMaster:
		return &inbound{Type: msgReleaseMaster}, nil

	case msgGameStateUpdate:
		data, _ := envelope["data"].(map[string]any)
		return &inbound{Type: msgGameStateUpdate, Data: data}, nil

	case "":
		// Legacy clients send the game state object itself, untagged.
		return &inbound{Type: msgGameStateUpdate, Data: envelope}, nil

	default:
		return nil, fmt.Errorf("unknown message type %q", msgType)
	}
}

// Outbound message shapes.

type roleAssignmentMsg struct {
	Type           string `json:"type"`
	Role           Role   `json:"role"`
	ClientID       string `json:"clientId"`
	MasterClientID string `json:"masterClientId"`
	MasterToken    string `json:"masterToken,omitempty"`
}

type roleChangedMsg struct {
	Type        string `json:"type"`
	NewRole     Role   `json:"newRole"`
	MasterToken string `json:"masterToken,omitempty"`
	ClearToken  bool   `json:"clearToken,omitempty"`
	Reason      string `json:"reason"`
}

type gameStateMsg struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func marshal(msg any) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		// Outbound shapes are plain structs; this cannot fail at runtime.
		panic(fmt.Sprintf("marshal outbound message: %v", err))
	}
	return data
}
