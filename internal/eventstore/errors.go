package eventstore

import (
	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
)

// Sentinel causes wrapped by store failures, so callers can test with errors.Is.
var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = perrors.New(perrors.CategoryFileSystem, perrors.SeverityError, "could not open history database")

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = perrors.New(perrors.CategoryInternal, perrors.SeverityError, "failed to initialize history schema")

	// ErrEventAppendFailed indicates appending an event failed.
	ErrEventAppendFailed = perrors.New(perrors.CategoryRuntime, perrors.SeverityError, "failed to append event to history")

	// ErrEventQueryFailed indicates querying or scanning events failed.
	ErrEventQueryFailed = perrors.New(perrors.CategoryRuntime, perrors.SeverityError, "failed to query events from history")

	// ErrMarshalPayloadFailed indicates JSON marshaling of an event payload failed.
	ErrMarshalPayloadFailed = perrors.New(perrors.CategoryInternal, perrors.SeverityError, "failed to marshal event payload")
)
