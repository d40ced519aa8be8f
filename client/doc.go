// Package client is the runtime imported by generated Go clients.
//
// A generated method encodes its input and headers, hands the request to a
// Transport and classifies the reply into a Result: a decoded output, a
// typed application error, or an opaque transport error. The package also
// holds the JSON codecs that generated enum types call to reproduce each
// enum representation on the wire.
package client
