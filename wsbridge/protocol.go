package wsbridge

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MessageType identifies an envelope exchanged with commander
type MessageType string

const (
	TypeRegister     MessageType = "register"
	TypeRegisterAck  MessageType = "register_ack"
	TypeHeartbeat    MessageType = "heartbeat"
	TypeHeartbeatAck MessageType = "heartbeat_ack"
	TypeError        MessageType = "error"

	TypeGetConfig       MessageType = "get_config"
	TypeGetConfigResult MessageType = "get_config_result"
	TypeGetCycles       MessageType = "get_cycles"
	TypeGetCyclesResult MessageType = "get_cycles_result"
	TypeGetCycle        MessageType = "get_cycle"
	TypeGetCycleResult  MessageType = "get_cycle_result"

	TypeSyncEvent MessageType = "sync_event"
)

// Envelope wraps every message on the wire
type Envelope struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func newEnvelope(t MessageType, requestID string, payload any) (*Envelope, error) {
	env := &Envelope{Type: t, RequestID: requestID}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", t, err)
		}
		env.Payload = data
	}
	return env, nil
}

// NewRequest creates an envelope that expects a response
func NewRequest(t MessageType, payload any) (*Envelope, error) {
	return newEnvelope(t, uuid.NewString(), payload)
}

// NewResponse answers the request with the given ID
func NewResponse(requestID string, t MessageType, payload any) (*Envelope, error) {
	return newEnvelope(t, requestID, payload)
}

// NewEvent creates a one-way envelope
func NewEvent(t MessageType, payload any) (*Envelope, error) {
	return newEnvelope(t, "", payload)
}

// NewError creates an error response
func NewError(requestID, code, message string) (*Envelope, error) {
	return newEnvelope(TypeError, requestID, &ErrorPayload{Code: code, Message: message})
}

// DecodePayload unmarshals the envelope payload into v
func DecodePayload(env *Envelope, v any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("empty %s payload", env.Type)
	}
	return json.Unmarshal(env.Payload, v)
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterPayload struct {
	InstanceName string         `json:"instanceName"`
	Version      string         `json:"version"`
	Config       InstanceConfig `json:"config"`
}

type RegisterAckPayload struct {
	InstanceID string `json:"instanceId"`
	Accepted   bool   `json:"accepted"`
	Reason     string `json:"reason,omitempty"`
}

type HeartbeatAckPayload struct{}

type GetConfigResultPayload struct {
	Config InstanceConfig `json:"config"`
}

type GetCyclesPayload struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type GetCyclesResultPayload struct {
	Cycles []CycleInfo `json:"cycles"`
	Total  int         `json:"total"`
}

type GetCyclePayload struct {
	CycleID string `json:"cycleId"`
}

type GetCycleResultPayload struct {
	Cycle    CycleInfo     `json:"cycle"`
	Attempts []AttemptInfo `json:"attempts"`
}

// SyncEventPayload carries one engine event
type SyncEventPayload struct {
	CycleID   string `json:"cycleId"`
	EventType string `json:"eventType"`
	Row       int    `json:"row,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// InstanceConfig is the JSON-safe summary of a running instance's config
type InstanceConfig struct {
	SpreadsheetID string         `json:"spreadsheetId"`
	Range         string         `json:"range"`
	Schema        string         `json:"schema"`
	Executor      string         `json:"executor"`
	RewriteModel  string         `json:"rewriteModel"`
	Interval      int            `json:"interval"`
	Models        []ModelInfo    `json:"models"`
	Variables     []VariableInfo `json:"variables"`
}

type ModelInfo struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type VariableInfo struct {
	Name   string `json:"name"`
	Secret bool   `json:"secret"`
}

type CycleInfo struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	Rows       int     `json:"rows"`
	Selected   int     `json:"selected"`
	Answered   int     `json:"answered"`
	Error      string  `json:"error,omitempty"`
	StartedAt  string  `json:"startedAt"`
	FinishedAt *string `json:"finishedAt,omitempty"`
}

type AttemptInfo struct {
	ID            string `json:"id"`
	Row           int    `json:"row"`
	Query         string `json:"query"`
	Stage         string `json:"stage"`
	Status        string `json:"status"`
	Soft          bool   `json:"soft"`
	AnswerPreview string `json:"answerPreview,omitempty"`
	Error         string `json:"error,omitempty"`
}
