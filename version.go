package aplus

// Version is overwritten at build time with -ldflags "-X github.com/aretw0/aplus.Version=...".
var Version = "dev"
