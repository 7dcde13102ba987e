package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key carrying
// the session token as "Bearer <token>".
const AuthorizationHeaderName = "authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "bearer"

// PasswordMinLength is the minimal accepted password length, in characters.
const PasswordMinLength = 8

// EmailMaxLength matches the width of the users.email column, in characters.
const EmailMaxLength = 320
