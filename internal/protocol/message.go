package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownKind = errors.New("unknown message kind")
	ErrBadPayload  = errors.New("bad payload")
)

var validate = validator.New()

// Message is the decoded form of one client envelope. The set is sealed:
// dispatch type-switches over the implementations below, so a new kind that
// is not handled everywhere shows up immediately.
type Message interface {
	kind() Kind
}

type Register struct {
	Role string `json:"role" validate:"required,oneof=user professional"`
}

func (Register) kind() Kind { return KindRegister }

type InitiateCall struct {
	// TargetCode, when set, asks for one specific professional by display code.
	TargetCode string `json:"target_code,omitempty" validate:"omitempty,alphanum,len=6"`
}

func (InitiateCall) kind() Kind { return KindInitiateCall }

type AcceptCall struct {
	UserID string `json:"user_id" validate:"required,max=36"`
}

func (AcceptCall) kind() Kind { return KindAcceptCall }

type RejectCall struct {
	UserID string `json:"user_id" validate:"required,max=36"`
	Reason string `json:"reason,omitempty" validate:"max=140"`
}

func (RejectCall) kind() Kind { return KindRejectCall }

type EndCall struct{}

func (EndCall) kind() Kind { return KindEndCall }

type Ping struct{}

func (Ping) kind() Kind { return KindPing }

// Passthrough wraps a relayed envelope. Raw is the frame exactly as received;
// forwarding it untouched keeps the payload opaque end to end.
type Passthrough struct {
	Env Envelope
	Raw []byte
}

func (p Passthrough) kind() Kind { return p.Env.Type }

// Decode parses one raw client frame into its envelope and typed message.
// Payload errors and failed validation come back wrapping ErrBadPayload.
func Decode(raw []byte) (Envelope, Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: envelope: %v", ErrBadPayload, err)
	}
	if env.Type.Relayed() {
		return env, Passthrough{Env: env, Raw: raw}, nil
	}

	var (
		msg Message
		err error
	)
	switch env.Type {
	case KindRegister:
		msg, err = decodeAs[Register](env)
	case KindInitiateCall:
		msg, err = decodeAs[InitiateCall](env)
	case KindAcceptCall:
		msg, err = decodeAs[AcceptCall](env)
	case KindRejectCall:
		msg, err = decodeAs[RejectCall](env)
	case KindEndCall:
		msg, err = decodeAs[EndCall](env)
	case KindPing:
		msg, err = decodeAs[Ping](env)
	default:
		return env, nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
	if err != nil {
		return env, nil, err
	}
	return env, msg, nil
}

func decodeAs[T Message](env Envelope) (Message, error) {
	var msg T
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Type, err)
		}
	}
	if err := validate.Struct(&msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Type, err)
	}
	return msg, nil
}
