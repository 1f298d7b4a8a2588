package v1

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/panel"
)

type POSTSessionRequest struct {
	Passcode string `json:"passcode"`
}

type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Error         string `json:"error,omitempty"`
}

type BridgeResponse struct {
	State           string `json:"state"`
	Endpoint        string `json:"endpoint"`
	DefaultEndpoint string `json:"default_endpoint,omitempty"`
}

type POSTConnectRequest struct {
	Endpoint string `json:"endpoint"`
}

// FormValue is a form field as typed by the operator. The browser may send
// it as a JSON string or a JSON number.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = FormValue(n.String())
	return nil
}

type POSTMovementRequest struct {
	Joints  [6]FormValue `json:"joints"`
	Gripper FormValue    `json:"gripper"`
}

func (r POSTMovementRequest) Form() panel.MoveForm {
	var form panel.MoveForm
	for i, joint := range r.Joints {
		form.Joints[i] = string(joint)
	}
	form.Gripper = string(r.Gripper)
	return form
}

type POSTScriptRequest struct {
	Script string `json:"script"`
}

type PUTTemplateRequest struct {
	Script string `json:"script"`
}

type ConsoleLine struct {
	Time  *time.Time `json:"time,omitempty"`
	Level string     `json:"level"`
	Text  string     `json:"text"`
	Line  string     `json:"line"`
}

type GETConsoleResponse struct {
	Entries []ConsoleLine `json:"entries"`
}

func NewConsoleResponse(entries []panel.ConsoleEntry) GETConsoleResponse {
	resp := GETConsoleResponse{Entries: make([]ConsoleLine, 0, len(entries))}
	for _, entry := range entries {
		line := ConsoleLine{
			Level: string(entry.Level),
			Text:  entry.Text,
			Line:  entry.Line(),
		}
		if !entry.Time.IsZero() {
			at := entry.Time
			line.Time = &at
		}
		resp.Entries = append(resp.Entries, line)
	}
	return resp
}
