// Package devices holds the supported eNodeB device types. Each Variant
// bundles a parameter catalog, value transforms, a desired-configuration
// postprocessor and a validated state table for the acs package.
//
// Variants are built once and shared by all sessions of that type.
// Resolve picks the variant for a device from the identity in its Inform.
package devices
