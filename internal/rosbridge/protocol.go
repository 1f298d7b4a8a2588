package rosbridge

import "encoding/json"

// Op names of the rosbridge v2 protocol used by the panel.
const (
	OpAdvertise       = "advertise"
	OpUnadvertise     = "unadvertise"
	OpPublish         = "publish"
	OpSubscribe       = "subscribe"
	OpUnsubscribe     = "unsubscribe"
	OpCallService     = "call_service"
	OpServiceResponse = "service_response"
	OpStatus          = "status"
)

type Advertise struct {
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
	Topic string `json:"topic"`
	Type  string `json:"type"`
}

type Unadvertise struct {
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
	Topic string `json:"topic"`
}

type Publish struct {
	Op    string          `json:"op"`
	ID    string          `json:"id,omitempty"`
	Topic string          `json:"topic"`
	Msg   json.RawMessage `json:"msg"`
}

type Subscribe struct {
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
	Topic string `json:"topic"`
	Type  string `json:"type,omitempty"`
}

type Unsubscribe struct {
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
	Topic string `json:"topic"`
}

type CallService struct {
	Op      string          `json:"op"`
	ID      string          `json:"id"`
	Service string          `json:"service"`
	Type    string          `json:"type,omitempty"`
	Args    json.RawMessage `json:"args,omitempty"`
}

type ServiceResponse struct {
	Op      string          `json:"op"`
	ID      string          `json:"id"`
	Service string          `json:"service"`
	Values  json.RawMessage `json:"values,omitempty"`
	Result  bool            `json:"result"`
}

type Status struct {
	Op    string `json:"op"`
	ID    string `json:"id,omitempty"`
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

// envelope is decoded first to route an inbound frame by op.
type envelope struct {
	Op string `json:"op"`
}

// Int32 and String mirror std_msgs/msg/Int32 and std_msgs/msg/String.
type Int32 struct {
	Data int32 `json:"data"`
}

type String struct {
	Data string `json:"data"`
}
