package internal

// Version is the dsreview release version.
const Version = "0.3.0"
