package parser

// CaptureQuery is the single static query that drives the symbol
// extractor (spec.md §4.2 step 1). Capture names match the six kinds
// spec.md names: fndef, vardef, command, fncall, identifier, field.
// Node kinds are the MATLAB grammar's, as used throughout
// original_source/src/extractors/symbols.rs (function_definition, lambda,
// identifier, field_expression, function_call, command, assignment,
// global_operator, multioutput_variable, arguments_statement, ...).
const CaptureQuery = `
(function_definition) @fndef
(lambda) @fndef

(assignment left: (identifier) @vardef)
(assignment left: (multioutput_variable (identifier) @vardef))
(function_output (identifier) @vardef)
(function_arguments (identifier) @vardef)
(global_operator (identifier) @vardef)

(command name: (command_name) @command)

(function_call) @fncall

(identifier) @identifier

(field_expression) @field
`

// DiagnosticsQuery surfaces tree-sitter's own error recovery nodes
// (spec.md §4.5 "Diagnostics": ERROR nodes become syntax errors).
const DiagnosticsQuery = `
(ERROR) @error
(MISSING) @missing
`

// FoldingQuery: every block node's start/end rows become a folding range
// (spec.md §4.5 "Folding").
const FoldingQuery = `
(block) @block
`

// SemanticQuery drives semantic-token classification (spec.md §4.5). The
// legend order in features/semantic.go mirrors
// original_source/src/features/semantic.rs's token_id table.
const SemanticQuery = `
(number) @number
(comment) @comment
(string) @string
(operator) @operator
["if" "else" "elseif" "end" "for" "while" "function" "return" "break" "continue" "switch" "case" "otherwise" "try" "catch" "global" "persistent"] @keyword
(function_arguments (identifier) @parameter)
(function_definition name: (identifier) @function)
(identifier) @identifer
`
