// Package tableau is a minimal client for the Tableau REST API.
//
// # Overview
//
// A Client owns one session against a site. The lifecycle is strictly
// sequential:
//
//  1. SignIn exchanges a Personal Access Token for an auth token and site id.
//  2. ListDataSources fetches the site's data sources with that token.
//  3. SignOut invalidates the token on a best-effort basis and always forgets
//     it locally.
//
// # Error Handling
//
// A rejected sign-in surfaces as *AuthenticationError and any other rejected
// request as *APIRequestError; both carry the HTTP status and the response
// body. Calling ListDataSources without a session returns ErrNotAuthenticated
// before any request is made. Transport failures are wrapped with the
// operation name. Nothing is retried.
//
// # Concurrency
//
// A Client is not safe for concurrent use. Callers issue one request at a
// time and wait for it to finish.
package tableau
