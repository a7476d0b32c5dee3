package config

// PasswordConfig holds the password policy for the provisioning workflow.
// The cost factor floor exists because lower factors weaken hashes below the
// policy baseline.
type PasswordConfig struct {
	DefaultCostFactor       int `env:"PASSWORD_DEFAULT_COST_FACTOR" env-default:"12"`
	MinCostFactor           int `env:"PASSWORD_MIN_COST_FACTOR" env-default:"10"`
	MinPasswordLength       int `env:"PASSWORD_MIN_LENGTH" env-default:"6"`
	GeneratedPasswordLength int `env:"PASSWORD_GENERATED_LENGTH" env-default:"8"`
}
