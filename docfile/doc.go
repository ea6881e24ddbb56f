// Package docfile loads configuration documents from YAML, JSON, or
// TOML files into ordered mapping trees.
//
// Format is auto-detected from extension (.yaml, .json, .toml). YAML
// and JSON documents keep their key order; TOML keys are normalized to
// sorted order.
//
// Example:
//
//	doc, err := docfile.Load("keel.yml", docfile.Options{Required: true})
//	cfg := keel.NewConfig(schema).WithFilePath("keel.yml")
//	cfg.Load(doc)
package docfile
