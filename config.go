package vaultmedia

import "github.com/goliatone/go-vaultmedia/internal/runtimeconfig"

var (
	ErrVaultPathRequired       = runtimeconfig.ErrVaultPathRequired
	ErrGenerationKeyRequired   = runtimeconfig.ErrGenerationKeyRequired
	ErrSearchKeyRequired       = runtimeconfig.ErrSearchKeyRequired
	ErrUploadEndpointRequired  = runtimeconfig.ErrUploadEndpointRequired
	ErrURLEndpointRequired     = runtimeconfig.ErrURLEndpointRequired
	ErrUploadKeyRequired       = runtimeconfig.ErrUploadKeyRequired
	ErrLedgerDSNRequired       = runtimeconfig.ErrLedgerDSNRequired
	ErrRetryCountInvalid       = runtimeconfig.ErrRetryCountInvalid
	ErrCacheRetentionInvalid   = runtimeconfig.ErrCacheRetentionInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	VaultConfig    = runtimeconfig.VaultConfig
	RecraftConfig  = runtimeconfig.RecraftConfig
	FreepikConfig  = runtimeconfig.FreepikConfig
	ImageKitConfig = runtimeconfig.ImageKitConfig
	CacheConfig    = runtimeconfig.CacheConfig
	LedgerConfig   = runtimeconfig.LedgerConfig
	PresetsConfig  = runtimeconfig.PresetsConfig
	Features       = runtimeconfig.Features
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
