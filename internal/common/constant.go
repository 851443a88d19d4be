package common

// TokenCookieName is the cookie that carries the session token between
// the browser front end and the server.
const TokenCookieName = "token"

// AuthorizationScheme prefixes the token in the Authorization header used
// by non-browser clients.
const AuthorizationScheme = "Bearer "
