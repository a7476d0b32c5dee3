// Package login implements local username/password credential verification
// and the redirect-based completion contract of the authentication plugin.
//
// # Overview
//
// The login package provides:
//   - A verification engine answering "does this username/password pair
//     authenticate?" against the users/credentials tables
//   - A bcrypt-based PasswordHasher with a tunable cost factor
//   - The redirect completion protocol: result=success / result=failure plus
//     an errorMessage parameter, with open-redirect protection for
//     caller-supplied override targets
//   - HTTP handlers for the login endpoint and the static plugin metadata
//
// # Basic Usage
//
//	repo := login.NewPostgresRepository(pool)
//	service := login.NewService(repo, login.BcryptHasher{})
//
//	handle := login.NewHandle(service, externalURL, "/sign-in-redirect", login.DefaultPluginMetadata())
//	r.Mount("/auth/login/internal", login.Routes(handle))
//
// The engine collapses "user not found" and "wrong password" into a single
// unauthorized outcome so login responses cannot be used to enumerate users;
// both paths perform a bcrypt comparison so they are not distinguishable by
// timing either.
package login
