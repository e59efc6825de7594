// Package accounts implements the account lifecycle for email/password
// services: signup with email activation, login, access/refresh token
// issuance, and OTP backed password resets.
//
// Flows:
//   - Signup creates a dormant account, mints an activation token, and
//     emails an activation link. If the email cannot be delivered the
//     account row is removed again so retrying the signup works.
//   - Activation verifies the token, resolves the account by the email
//     claim, and flips it active. Repeat activations are no-ops.
//   - Login checks activation before credentials and returns an
//     access/refresh token pair. Refresh exchanges a live refresh token
//     for a new access token without rotating the refresh token.
//   - Password resets go through a 6 digit one time code: at most one
//     live code per email, three attempts, ten minute expiry, deleted
//     on use.
//
// Each token class (activation, access, refresh) is signed with its own
// key so a leaked secret cannot forge tokens of another class.
//
// Persistence is Bun backed via RepositoryManager; the HTTP surface is
// a thin go-router adapter over Service. Implement Notifier to plug in
// a real mail transport.
package accounts
