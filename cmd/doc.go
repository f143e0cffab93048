// Package cmd provides the command-line interface for assetcat.
//
// This package implements all CLI commands using the Cobra framework.
//
// # Available Commands
//
//   - init: Write a starter .assetcat.yml, optionally listing existing sources
//   - build: Concatenate the sources into the CSS and JS bundles
//   - watch: Rebuild the bundles whenever a source changes
//   - compare: Print development and minified sizes side by side
//   - package: Zip the output directory for upload
//   - config: Show or validate the resolved configuration
//   - version: Print build information
//
// # Command Examples
//
//	// Development bundles
//	assetcat build
//
//	// Production bundles, stylesheet only
//	assetcat build --min --css-only
//
//	// Rebuild on change
//	assetcat watch --verbose
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (ASSETCAT_*)
//  3. Configuration file (.assetcat.yml)
//  4. Default values (lowest priority)
//
// # Error Handling
//
// Commands return errors to main, which exits with status 1. The failing
// error is logged on the way out, followed by a hint when the user can fix
// it, such as a missing source directory. Sources that
// are missing or empty are warnings and never fail a build. Logs go to
// stderr so that reports on stdout stay machine readable with --format json.
package cmd
