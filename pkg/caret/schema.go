package caret

// Wire types for the CARET architecture YAML. Only the fields rosviz consumes
// are declared; unknown keys are ignored by the decoder.

type architecture struct {
	Nodes      []archNode     `yaml:"nodes"`
	NamedPaths []archPath     `yaml:"named_paths"`
	Executors  []archExecutor `yaml:"executors"`
}

type archNode struct {
	NodeName       string              `yaml:"node_name"`
	Publishes      []archTopic         `yaml:"publishes"`
	Subscribes     []archTopic         `yaml:"subscribes"`
	CallbackGroups []archCallbackGroup `yaml:"callback_groups"`
	Callbacks      []archCallback      `yaml:"callbacks"`
}

type archTopic struct {
	TopicName string `yaml:"topic_name"`
}

type archPath struct {
	PathName  string          `yaml:"path_name"`
	NodeChain []archChainNode `yaml:"node_chain"`
}

type archChainNode struct {
	NodeName string `yaml:"node_name"`
}

type archExecutor struct {
	ExecutorName       string   `yaml:"executor_name"`
	ExecutorType       string   `yaml:"executor_type"`
	CallbackGroupNames []string `yaml:"callback_group_names"`
}

type archCallbackGroup struct {
	CallbackGroupName string   `yaml:"callback_group_name"`
	CallbackGroupType string   `yaml:"callback_group_type"`
	CallbackNames     []string `yaml:"callback_names"`
}

type archCallback struct {
	CallbackName string `yaml:"callback_name"`
	CallbackType string `yaml:"callback_type"`
	TopicName    string `yaml:"topic_name"`
	PeriodNS     int64  `yaml:"period_ns"`
}
