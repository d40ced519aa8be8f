// Package shapegen generates typed API clients from a schema.
//
// A schema describes functions and the shapes of the values they exchange.
// It is produced by the builder package (directly, or from Go types through
// the provider package) or read from the interchange format with
// schema.Decode. Generate plans the schema once per target and writes every
// target's files into a sink:
//
//	res, err := shapegen.FromSchema(s).
//	    Target("typescript").Option("runtime_file=true").
//	    Target("openapi").Option("format=yaml").Dir("docs").
//	    ToDir("./client")
//
// Available targets are "typescript", "go" and "openapi".
package shapegen
