// Package config loads the signup client configuration from the environment.
//
// Values are read with cleanenv from env tags, falling back to env-default:
//
//	SIGNUP_API_URL     base URL of the signup service (http://localhost:8000)
//	SIGNUP_PATH        path of the signup endpoint (/api/auth/signup)
//	SIGNUP_USER_AGENT  User-Agent sent with requests (simple-signup)
//	LOG_LEVEL          debug, info, warn or error (info)
//
// # Basic Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//
//	level, _ := config.ParseLevel(cfg.LogConfig.Level)
//
// Command line flags may override values after Load; call Validate again
// afterwards.
package config
