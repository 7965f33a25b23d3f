package config

// EnvKey exports envKey for testing.
var EnvKey = envKey
