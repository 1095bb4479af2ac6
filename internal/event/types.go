package event

// CommandData is the data for command.registered, command.removed,
// command.enabled and command.disabled events.
type CommandData struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Builtin   bool   `json:"builtin"`
}

// CommandsLoadedData is the data for commands.loaded events.
type CommandsLoadedData struct {
	Total   int `json:"total"`
	Builtin int `json:"builtin"`
	User    int `json:"user"`
}

// ModuleFailedData is the data for module.failed events.
type ModuleFailedData struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ScriptFailedData is the data for script.failed events.
type ScriptFailedData struct {
	Namespace string `json:"namespace"`
	Error     string `json:"error"`
}

// HistoryUpdatedData is the data for history.updated events.
type HistoryUpdatedData struct {
	Input string `json:"input"`
	Size  int    `json:"size"`
}
