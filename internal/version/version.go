// ABOUTME: Product and version constants
// ABOUTME: Reported in logs and the CLI version flag
package version

const (
	// Version is the application version
	Version = "0.3.0"

	// Product is the product name
	Product = "PracticeSharp"

	// Manufacturer is the publisher name
	Manufacturer = "PracticeSharp"
)
