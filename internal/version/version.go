package version

// Value is set at build time with
// -ldflags "-X drive-gallery/internal/version.Value=v1.2.3".
var Value = "dev"
