package config

// Version is overridden at build time with -ldflags "-X square.ai/skill-gateway/config.Version=..."
var Version = "dev"
