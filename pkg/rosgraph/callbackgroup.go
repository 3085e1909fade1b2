package rosgraph

// CallbackType classifies a callback within a callback group.
type CallbackType string

const (
	// CallbackSubscription is a subscription callback; Description holds the topic name.
	CallbackSubscription CallbackType = "sub"
	// CallbackTimer is a timer callback; Description holds the period in milliseconds.
	CallbackTimer CallbackType = "timer"
)

// CallbackDetail describes a single callback inside a callback group.
type CallbackDetail struct {
	Name        string       `json:"name" bson:"name"`
	Type        CallbackType `json:"type" bson:"type"`
	Description string       `json:"description" bson:"description"`
}

// CallbackGroup describes a CARET callback group attached to a node,
// including the executor it runs on. Executors owning more than one callback
// group carry a highlight color so shared executors stand out.
type CallbackGroup struct {
	Name      string           `json:"name" bson:"name"`
	Type      string           `json:"type" bson:"type"`
	Executor  string           `json:"executor" bson:"executor"`
	Color     [3]uint8         `json:"color" bson:"color"`
	Callbacks []CallbackDetail `json:"callbacks,omitempty" bson:"callbacks,omitempty"`
}
