package output

// DiagnosticInfo is one diagnostic in JSON output.
type DiagnosticInfo struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Path     string `json:"path"`
	NodeID   string `json:"node_id,omitempty"`
	Message  string `json:"message"`
}

// PackageResult is one converted package in JSON output.
type PackageResult struct {
	Source       string           `json:"source"`
	Package      string           `json:"package,omitempty"`
	Status       string           `json:"status"`
	Fingerprint  string           `json:"fingerprint,omitempty"`
	ConversionID string           `json:"conversion_id,omitempty"`
	Entry        string           `json:"entry,omitempty"`
	Functions    []string         `json:"functions"`
	OutputDir    string           `json:"output_dir,omitempty"`
	Files        []string         `json:"files,omitempty"`
	Diagnostics  []DiagnosticInfo `json:"diagnostics"`
	DurationMS   int64            `json:"duration_ms"`
	Error        string           `json:"error,omitempty"`
}

// ConvertSummary totals a conversion run.
type ConvertSummary struct {
	Total      int   `json:"total"`
	Succeeded  int   `json:"succeeded"`
	Skipped    int   `json:"skipped"`
	Failed     int   `json:"failed"`
	DurationMS int64 `json:"duration_ms"`
}

// ConvertOutput is the JSON output of the convert command.
type ConvertOutput struct {
	Packages []PackageResult `json:"packages"`
	Summary  ConvertSummary  `json:"summary"`
}

// PlanStep is one emitted call in a container plan.
type PlanStep struct {
	Task     string     `json:"task"`
	Function string     `json:"function"`
	Via      string     `json:"via,omitempty"`
	Guard    string     `json:"guard,omitempty"`
	Next     []PlanStep `json:"next,omitempty"`
}

// ContainerPlan is the plan of one container in JSON output.
type ContainerPlan struct {
	Container string     `json:"container"`
	Function  string     `json:"function"`
	Steps     int        `json:"steps"`
	Roots     []PlanStep `json:"roots"`
	Error     string     `json:"error,omitempty"`
}

// PlanOutput is the JSON output of the plan command.
type PlanOutput struct {
	Package     string           `json:"package"`
	Containers  []ContainerPlan  `json:"containers"`
	Diagnostics []DiagnosticInfo `json:"diagnostics"`
}

// LineageColumn is a column produced in a pipeline.
type LineageColumn struct {
	LineageID string `json:"lineage_id"`
	Table     string `json:"table"`
	Ordinal   int    `json:"ordinal"`
	Name      string `json:"name"`
	DataType  string `json:"data_type,omitempty"`
}

// LineageInput is a column consumed by a sink.
type LineageInput struct {
	LineageID string         `json:"lineage_id"`
	Name      string         `json:"name"`
	Source    *LineageColumn `json:"source"`
}

// LineageComponent is one pipeline component.
type LineageComponent struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Role    string          `json:"role"`
	Table   string          `json:"table,omitempty"`
	Query   string          `json:"query,omitempty"`
	Target  string          `json:"target,omitempty"`
	Outputs []LineageColumn `json:"outputs,omitempty"`
	Inputs  []LineageInput  `json:"inputs,omitempty"`
}

// PipelineLineage is the lineage of one pipeline task.
type PipelineLineage struct {
	Pipeline   string             `json:"pipeline"`
	Components []LineageComponent `json:"components"`
}

// LineageOutput is the JSON output of the lineage command.
type LineageOutput struct {
	Package     string            `json:"package"`
	Pipelines   []PipelineLineage `json:"pipelines"`
	Diagnostics []DiagnosticInfo  `json:"diagnostics"`
}

// ConversionInfo is one history record.
type ConversionInfo struct {
	ID          string  `json:"id"`
	Package     string  `json:"package"`
	Source      string  `json:"source"`
	Status      string  `json:"status"`
	Functions   int     `json:"functions"`
	OutputDir   string  `json:"output_dir,omitempty"`
	StartedAt   string  `json:"started_at"`
	CompletedAt *string `json:"completed_at"`
	Error       string  `json:"error,omitempty"`
}

// BindingInfo is one variable binding of a conversion.
type BindingInfo struct {
	Name      string `json:"name"`
	Qualified string `json:"qualified"`
	Type      string `json:"type"`
	Default   string `json:"default,omitempty"`
	Scope     string `json:"scope"`
	Owner     string `json:"owner"`
}

// HistoryOutput is the JSON output of the history command.
type HistoryOutput struct {
	Conversions []ConversionInfo `json:"conversions"`
	Diagnostics []DiagnosticInfo `json:"diagnostics,omitempty"`
	Bindings    []BindingInfo    `json:"bindings,omitempty"`
}
