package dtsx

import "strings"

// Element tags that the converter understands.
const (
	TagExecutable             = "DTS:Executable"
	TagPrecedenceConstraint   = "DTS:PrecedenceConstraint"
	TagVariable               = "DTS:Variable"
	TagVariableValue          = "DTS:VariableValue"
	TagProperty               = "DTS:Property"
	TagObjectData             = "DTS:ObjectData"
	TagConnectionManager      = "DTS:ConnectionManager"
	TagConnectionManagers     = "DTS:ConnectionManagers"
	TagVariables              = "DTS:Variables"
	TagExecutables            = "DTS:Executables"
	TagPrecedenceConstraints  = "DTS:PrecedenceConstraints"
	TagLoggingOptions         = "DTS:LoggingOptions"
	TagForEachEnumerator      = "DTS:ForEachEnumerator"
	TagForEachVariableMapping = "DTS:ForEachVariableMapping"
	TagForEachMappings        = "DTS:ForEachVariableMappings"
	TagEventHandler           = "DTS:EventHandler"
	TagEventHandlers          = "DTS:EventHandlers"
	TagSQLTaskData            = "SQLTask:SqlTaskData"
	TagSQLParameterBinding    = "SQLTask:ParameterBinding"
	TagSQLResultBinding       = "SQLTask:ResultBinding"
	TagSendMailTaskData       = "SendMailTask:SendMailTaskData"
	TagPipeline               = "pipeline"
)

// Attribute names read by the converter.
const (
	AttrExecutableType = "DTS:ExecutableType"
	AttrRefID          = "DTS:refId"
	AttrDataType       = "DTS:DataType"
)

// =============================================================================
// Kind
// =============================================================================

// Kind is the closed set of node kinds. Tags outside the set map to
// KindUnknown; the raw tag stays on Node.TypeTag.
type Kind int

// Node kinds.
const (
	KindUnknown Kind = iota
	KindExecutable
	KindPrecedenceConstraint
	KindVariable
	KindVariableValue
	KindObjectData
	KindConnectionManager
	KindLoggingOptions
	KindForEachEnumerator
	KindForEachVariableMapping
	KindEventHandler
	KindSQLTaskData
	KindSQLParameterBinding
	KindSQLResultBinding
	KindSendMailTaskData
	KindPipeline
	// KindGrouping marks the wrapper elements of the 2012 format
	// (DTS:Executables, DTS:Variables, ...) whose children belong to the
	// enclosing container.
	KindGrouping
)

var kindByTag = map[string]Kind{
	TagExecutable:             KindExecutable,
	TagPrecedenceConstraint:   KindPrecedenceConstraint,
	TagVariable:               KindVariable,
	TagVariableValue:          KindVariableValue,
	TagObjectData:             KindObjectData,
	TagConnectionManager:      KindConnectionManager,
	TagLoggingOptions:         KindLoggingOptions,
	TagForEachEnumerator:      KindForEachEnumerator,
	TagForEachVariableMapping: KindForEachVariableMapping,
	TagEventHandler:           KindEventHandler,
	TagSQLTaskData:            KindSQLTaskData,
	TagSQLParameterBinding:    KindSQLParameterBinding,
	TagSQLResultBinding:       KindSQLResultBinding,
	TagSendMailTaskData:       KindSendMailTaskData,
	TagPipeline:               KindPipeline,
	TagConnectionManagers:     KindGrouping,
	TagVariables:              KindGrouping,
	TagExecutables:            KindGrouping,
	TagPrecedenceConstraints:  KindGrouping,
	TagForEachMappings:        KindGrouping,
	TagEventHandlers:          KindGrouping,
}

// KindOf classifies a type tag.
func KindOf(tag string) Kind {
	if k, ok := kindByTag[tag]; ok {
		return k
	}
	return KindUnknown
}

// Kind returns the node's kind.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindUnknown
	}
	return KindOf(n.TypeTag)
}

func (k Kind) String() string {
	switch k {
	case KindExecutable:
		return "executable"
	case KindPrecedenceConstraint:
		return "precedence_constraint"
	case KindVariable:
		return "variable"
	case KindVariableValue:
		return "variable_value"
	case KindObjectData:
		return "object_data"
	case KindConnectionManager:
		return "connection_manager"
	case KindLoggingOptions:
		return "logging_options"
	case KindForEachEnumerator:
		return "foreach_enumerator"
	case KindForEachVariableMapping:
		return "foreach_variable_mapping"
	case KindEventHandler:
		return "event_handler"
	case KindSQLTaskData:
		return "sql_task_data"
	case KindSQLParameterBinding:
		return "sql_parameter_binding"
	case KindSQLResultBinding:
		return "sql_result_binding"
	case KindSendMailTaskData:
		return "send_mail_task_data"
	case KindPipeline:
		return "pipeline"
	case KindGrouping:
		return "grouping"
	default:
		return "unknown"
	}
}

// =============================================================================
// Executable kinds
// =============================================================================

// ExecKind is the closed set of executable types the converter translates.
type ExecKind int

// Executable kinds.
const (
	ExecUnknown ExecKind = iota
	ExecPackage
	ExecScriptTask
	ExecSQLTask
	ExecSequence
	ExecForLoop
	ExecForEachLoop
	ExecPipeline
	ExecSendMail
)

func (k ExecKind) String() string {
	switch k {
	case ExecPackage:
		return "package"
	case ExecScriptTask:
		return "script_task"
	case ExecSQLTask:
		return "sql_task"
	case ExecSequence:
		return "sequence"
	case ExecForLoop:
		return "for_loop"
	case ExecForEachLoop:
		return "foreach_loop"
	case ExecPipeline:
		return "pipeline"
	case ExecSendMail:
		return "send_mail"
	default:
		return "unknown"
	}
}

// Executable is a classified executable type. Raw keeps the declared type
// string, which is all there is to go on when Kind is ExecUnknown.
type Executable struct {
	Kind ExecKind
	Raw  string
}

// Keys are lower-cased type names with any assembly qualification removed.
var execByType = map[string]ExecKind{
	"ssis.package.2":   ExecPackage,
	"ssis.package.3":   ExecPackage,
	"microsoft.package": ExecPackage,

	"microsoft.sqlserver.dts.tasks.scripttask.scripttask": ExecScriptTask,
	"microsoft.scripttask":                                ExecScriptTask,

	"microsoft.sqlserver.dts.tasks.executesqltask.executesqltask": ExecSQLTask,
	"microsoft.executesqltask":                                    ExecSQLTask,

	"stock:sequence":    ExecSequence,
	"stock:forloop":     ExecForLoop,
	"stock:foreachloop": ExecForEachLoop,

	"ssis.pipeline.2":    ExecPipeline,
	"ssis.pipeline.3":    ExecPipeline,
	"microsoft.pipeline": ExecPipeline,

	"microsoft.sqlserver.dts.tasks.sendmailtask.sendmailtask": ExecSendMail,
	"microsoft.sendmailtask":                                  ExecSendMail,
}

// ClassifyExecutable maps a DTS:ExecutableType value to its kind.
func ClassifyExecutable(raw string) Executable {
	key := raw
	if i := strings.IndexByte(key, ','); i >= 0 {
		key = key[:i]
	}
	key = strings.ToLower(strings.TrimSpace(key))
	return Executable{Kind: execByType[key], Raw: raw}
}

// Executable classifies the node's DTS:ExecutableType attribute.
func (n *Node) Executable() Executable {
	return ClassifyExecutable(n.Attr(AttrExecutableType))
}
