// Package auth issues and verifies the signed cookie claims behind a small
// web account flow: registration, password login, logout, and a password
// reset driven by a one-time code sent by email.
//
// Claims:
//   - AuthorizationClaim is the session. It carries the user id and the
//     is_session_claim marker and lives for seven days.
//   - PasswordResetClaim carries the email, the six character code and the
//     authorized flag. It lives for fifteen minutes and only becomes usable
//     for a password change after Authorize accepts the emailed code.
//
// Both travel in the "token" cookie as HS256 JWTs signed by a ClaimCodec.
// Each claim type validates its own shape on decode, so a reset token is
// never accepted as a session and the other way around.
//
// Commands:
//   - RegisterUserHandler, LoginHandler, RequestPasswordResetHandler,
//     VerifyResetCodeHandler and ChangePasswordHandler hold the business
//     rules. They depend on the UserStore, Mailer and ResetTokenRegistry
//     interfaces and report outcomes through go-errors sentinels.
//
// HTTP:
//   - RouteAuthenticator guards fiber routes and writes claim cookies.
//     RegisterAuthRoutes mounts the /api/auth endpoints and the dashboard.
//
// Activity sinks:
//   - ActivitySink receives login, registration and reset events. Sinks run
//     best-effort, errors are logged and never fail the request.
package auth
