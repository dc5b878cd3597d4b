package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *PostError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *PostError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file is invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *PostError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Settings errors

func UnknownSetting(script, key string) *PostError {
	return New(CategoryValidation, SeverityFatal, "unknown setting").
		WithContext("script", script).
		WithContext("setting", key)
}

func InvalidSettingValue(key string, value any, cause error) *PostError {
	return Wrap(cause, CategoryValidation, SeverityFatal, "invalid setting value").
		WithContext("setting", key).
		WithContext("value", value)
}

// Script errors

func ScriptNotFound(name string) *PostError {
	return New(CategoryPlugin, SeverityFatal, "script not registered").
		WithContext("script", name)
}

func ScriptFailed(name string, cause error) *PostError {
	return Wrap(cause, CategoryPlugin, SeverityFatal, "script failed").
		WithContext("script", name)
}

// Document errors

func FileError(operation, path string, cause error) *PostError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "file operation failed").
		WithContext("operation", operation).
		WithContext("path", path)
}

func ParseError(path string, cause error) *PostError {
	return Wrap(cause, CategoryParse, SeverityFatal, "g-code document could not be read").
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *PostError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
