// Package session is the client-side authentication session holder for the
// Planora project-management backend: it keeps the access/refresh credential
// pair, derives identity and authorization facts locally from the access
// token, renews expiring credentials on demand, and publishes a single
// consistent "who is logged in" value to UI observers.
//
// Components:
//   - CredentialStore persists the credential pair plus a cached identity
//     snapshot across restarts (in-memory and bun/sqlite backends ship).
//   - DecodeAccessToken extracts the identity claim set from an access token
//     without any network round-trip.
//   - SessionState is the authoritative current-identity value with a
//     subscription mechanism so observers re-render on change. It moves from
//     Uninitialized to Authenticated/Unauthenticated exactly once during
//     startup hydration and never back.
//   - Manager orchestrates login, registration, logout, renewal and startup
//     hydration, and is the only component that writes the store or the
//     session state.
//
// Security note: the client performs no cryptographic verification of the
// access token. Claims are trusted because they arrive in a trusted login or
// refresh response; they exist so the UI can render without extra round
// trips. They must never back authorization decisions that matter
// server-side - the backend re-verifies the token on every request.
package session
