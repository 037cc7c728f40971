// Package config loads the formsync CLI configuration from YAML.
//
// Loading applies defaults first, then the file, then environment overrides
// for secrets, and finally validates the result.
package config
