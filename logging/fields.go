// Copyright © 2024 The Fuus Army Knife authors

package logging

// Field names for structured logging.
const (
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	FieldModule   = "module"
	FieldLanguage = "language"
	FieldScript   = "script"

	FieldWorkers        = "workers"
	FieldFilesProcessed = "files_processed"
	FieldFilesChanged   = "files_changed"
	FieldProblems       = "problems"
)
