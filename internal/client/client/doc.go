// Package client is the authenticated request pipeline of the RoadWatch
// client.
//
// # Overview
//
// HTTPClient sends JSON requests to the REST backend. On every call it reads
// the token store and, when a credential is present, attaches it as a bearer
// Authorization header. A 401 from any endpoint clears the token store and
// invokes the registered unauthorized handler (the session manager), so no
// caller has to handle session invalidation on its own.
//
// Typed methods (Me, Login, Register, Logout, ResetPassword, ChangePassword,
// DeleteAccount, Ping) wrap Do and validate response bodies before handing
// them out.
//
// # Error Handling
//
// Failures are *ResponseError values matching one of the sentinels with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrServer, ErrValidation.
// ServerMessage extracts the backend's message for user-facing text.
//
// The package also bootstraps the local SQLite database (InitDatabase,
// RunMigrations) that backs the token store.
package client
