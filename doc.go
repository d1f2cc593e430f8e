// Package dashboard is a small admin-dashboard scaffold: user registration,
// credential verification, stateless JWT session cookies, and the handful of
// identity endpoints a dashboard shell needs.
//
// Authentication flow:
//   - Registration hashes the incoming password with bcrypt and persists a
//     User record through the Bun-backed Users repository. Email and username
//     are unique; duplicates surface as conflict errors, never generic 500s.
//   - Login collapses "unknown user" and "wrong password" into one failure
//     shape so callers cannot enumerate accounts. A successful login mints an
//     HS256 token carrying {sub, id, role, exp} and parks it in an HTTP-only,
//     SameSite=Lax cookie whose max-age matches the token TTL.
//   - Logout clears the cookie by name. Tokens are stateless: a previously
//     issued token stays valid until its natural expiry.
//
// The signing secret is injected through Config at startup; there is no
// package-level secret and no compiled-in default.
package dashboard
