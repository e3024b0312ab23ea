package canopy

// Version is the current Canopy release, surfaced by the CLI and the adapters.
var Version = "0.4.1"
