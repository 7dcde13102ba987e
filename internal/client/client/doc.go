// Package client talks to the gophauth Session gRPC service.
//
// The service has no generated stubs, so GRPCClient invokes the methods
// directly with protobuf Struct payloads. The session token returned by
// LogIn is attached to later calls as a bearer authorization header.
//
// Transport failures are reported as ErrUnavailable and rejected
// credentials or tokens as ErrUnauthorized.
package client
