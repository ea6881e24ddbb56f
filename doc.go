// Package keel provides schema-driven validation of hierarchical
// configuration documents, with typed coercion, ordered error and
// warning collection, and composable option kinds.
//
// Quick Start:
//
//	schema := keel.Schema{
//	    {Name: "site_name", Option: keel.Type(keel.KindString)},
//	    {Name: "port", Option: keel.Type(keel.KindInt).WithDefault(8000)},
//	    {Name: "theme", Option: keel.Optional(keel.Type(keel.KindString))},
//	}
//
//	cfg := keel.NewConfig(schema).WithFilePath("keel.yml")
//	cfg.Load(doc)
//	errs, warns := cfg.Validate()
//
// Option kinds cover scalars (Type, Choice), network addresses
// (IPAddr), URLs, filesystem paths, nested sub-configs, homogeneous
// lists and dicts, deprecation shims, plugin collections, hook scripts
// and extension lists.
//
// See example_test.go for detailed usage.
package keel
