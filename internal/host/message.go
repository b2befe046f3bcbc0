package host

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sonroyaalmerol/tilawa/internal/player"
)

const (
	TypeRender  = "render"
	TypeControl = "control"

	TypeComponentReady    = "componentReady"
	TypeSetFrameHeight    = "setFrameHeight"
	TypeSetComponentValue = "setComponentValue"
	TypeView              = "view"
	TypeProgress          = "progress"
)

const (
	ActionPrev   = "prev"
	ActionNext   = "next"
	ActionToggle = "toggle"
	ActionSeek   = "seek"
)

var ErrMalformed = errors.New("malformed host message")

// RenderArgs is the state pushed by the host on every render.
type RenderArgs struct {
	Playlist   player.Playlist `json:"playlist"`
	StartIndex int             `json:"start_index"`
	IsPlaying  bool            `json:"is_playing"`
}

// Inbound is a message received from the host.
type Inbound struct {
	Type   string      `json:"type"`
	Args   *RenderArgs `json:"args,omitempty"`
	Action string      `json:"action,omitempty"`

	Fraction *float64 `json:"fraction,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Left     *float64 `json:"left,omitempty"`
	Width    *float64 `json:"width,omitempty"`
}

// SeekFraction resolves the seek target from either an explicit fraction or
// a click position on the seek strip.
func (m Inbound) SeekFraction() (float64, bool) {
	if m.Fraction != nil {
		return *m.Fraction, true
	}
	if m.X != nil && m.Left != nil && m.Width != nil {
		return player.SeekFraction(*m.X, *m.Left, *m.Width), true
	}
	return 0, false
}

// DecodeInbound parses and validates one host message.
func DecodeInbound(data []byte) (Inbound, error) {
	var m Inbound
	if err := json.Unmarshal(data, &m); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch m.Type {
	case TypeRender, "streamlit:render":
		if m.Args == nil {
			return Inbound{}, fmt.Errorf("%w: render without args", ErrMalformed)
		}
		m.Type = TypeRender
	case TypeControl:
		switch m.Action {
		case ActionPrev, ActionNext, ActionToggle:
		case ActionSeek:
			if _, ok := m.SeekFraction(); !ok {
				return Inbound{}, fmt.Errorf("%w: seek without position", ErrMalformed)
			}
		default:
			return Inbound{}, fmt.Errorf("%w: unknown action %q", ErrMalformed, m.Action)
		}
	default:
		return Inbound{}, fmt.Errorf("%w: unknown type %q", ErrMalformed, m.Type)
	}
	return m, nil
}

// Outbound is a message sent to the host.
type Outbound struct {
	Type       string         `json:"type"`
	APIVersion int            `json:"apiVersion,omitempty"`
	Height     int            `json:"height,omitempty"`
	Value      *player.Report `json:"value,omitempty"`
	View       any            `json:"view,omitempty"`
	Progress   any            `json:"progress,omitempty"`
}

func ComponentReady(apiVersion int) Outbound {
	return Outbound{Type: TypeComponentReady, APIVersion: apiVersion}
}

func SetFrameHeight(height int) Outbound {
	return Outbound{Type: TypeSetFrameHeight, Height: height}
}

func SetComponentValue(r player.Report) Outbound {
	return Outbound{Type: TypeSetComponentValue, Value: &r}
}

func ViewMessage(v any) Outbound { return Outbound{Type: TypeView, View: v} }

func ProgressMessage(p any) Outbound { return Outbound{Type: TypeProgress, Progress: p} }
